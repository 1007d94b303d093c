// Package cli implements msgctl, the operator command line for the notifier.
//
// Every subcommand loads the same layered configuration as the service and
// builds the component graph through bootstrap, so output matches what the
// running service would produce.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/message-notifier/internal/bootstrap"
	"github.com/jsamuelsen/message-notifier/internal/platform/config"
	"github.com/jsamuelsen/message-notifier/internal/platform/logging"
)

// Option customizes the root command.
type Option func(*runtime)

// WithBootstrapOptions passes overrides to bootstrap.Build.
func WithBootstrapOptions(opts ...bootstrap.Option) Option {
	return func(r *runtime) { r.buildOpts = append(r.buildOpts, opts...) }
}

// WithConfig skips config loading and uses cfg.
func WithConfig(cfg *config.Config) Option {
	return func(r *runtime) { r.cfg = cfg }
}

// runtime is the state shared by subcommands of one invocation.
type runtime struct {
	profile   string
	cfg       *config.Config
	buildOpts []bootstrap.Option

	logger     *slog.Logger
	components *bootstrap.Components
}

// NewRootCommand creates the msgctl command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	rt := &runtime{}
	for _, opt := range opts {
		opt(rt)
	}

	cmd := &cobra.Command{
		Use:   "msgctl",
		Short: "Inspect and exercise the message notifier",
		Long: `msgctl formats reply quotes, renders notification templates and sends
test notifications using the same configuration as the notifier service.`,
		SilenceUsage:      true,
		PersistentPreRunE: rt.setup,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if rt.components == nil {
				return nil
			}

			return rt.components.Close()
		},
	}

	defaultProfile := os.Getenv("APP_ENVIRONMENT")
	if defaultProfile == "" {
		defaultProfile = "local"
	}

	cmd.PersistentFlags().StringVarP(&rt.profile, "profile", "p", defaultProfile, "Config profile (configs/<profile>.yaml)")

	cmd.AddCommand(
		newQuoteCommand(rt),
		newUserModelCommand(rt),
		newRenderCommand(rt),
		newNotifyCommand(rt),
	)

	return cmd
}

func (rt *runtime) setup(cmd *cobra.Command, _ []string) error {
	if rt.cfg == nil {
		cfg, err := config.Load(rt.profile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		rt.cfg = cfg
	}

	if err := rt.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// stdout carries command output; logs go to stderr.
	rt.logger = logging.NewWithWriter(&logging.Config{
		Level:   rt.cfg.Log.Level,
		Format:  rt.cfg.Log.Format,
		Service: "msgctl",
		Version: rt.cfg.App.Version,
	}, cmd.ErrOrStderr())

	components, err := bootstrap.Build(rt.cfg, rt.logger, rt.buildOpts...)
	if err != nil {
		return fmt.Errorf("building components: %w", err)
	}

	rt.components = components

	return nil
}

// readInput reads all of stdin.
func readInput(cmd *cobra.Command) ([]byte, error) {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}

	return data, nil
}

var errEmptyInput = errors.New("no input on stdin")
