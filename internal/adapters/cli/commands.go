package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jsamuelsen/message-notifier/internal/adapters/http/dto"
	"github.com/jsamuelsen/message-notifier/internal/app"
)

// Output formats for commands that print structured data.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func newQuoteCommand(rt *runtime) *cobra.Command {
	var sender, lang string

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a message body read from stdin",
		Long: `Wraps the body read from stdin and prefixes each line with "> ",
under a localized "<sender> wrote:" header. A single trailing newline
in the input is ignored.`,
		Example: `  echo "hello world" | msgctl quote --sender alice
  msgctl quote --sender alice --lang de < reply.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd)
			if err != nil {
				return err
			}

			localizer, err := rt.components.LocalizerFor(lang)
			if err != nil {
				return fmt.Errorf("selecting language: %w", err)
			}

			body := strings.TrimSuffix(string(data), "\n")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), app.NewQuoteFormatter(localizer).FormatQuote(sender, body))

			return err
		},
	}

	cmd.Flags().StringVarP(&sender, "sender", "s", "", "Name shown in the quote header (required)")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Language tag for the header (default: i18n.language)")
	_ = cmd.MarkFlagRequired("sender")

	return cmd
}

func newUserModelCommand(rt *runtime) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "user-model",
		Short: "Show the active user model and its username field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			model := rt.components.Users.ResolveUserModel()
			resp := dto.UserModelResponse{Model: model.Name, UsernameField: model.UsernameField}

			out := cmd.OutOrStdout()

			switch output {
			case outputJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")

				return enc.Encode(resp)

			case outputYAML:
				return yaml.NewEncoder(out).Encode(map[string]string{
					"model":          resp.Model,
					"username_field": resp.UsernameField,
				})

			case outputText:
				_, err := fmt.Fprintf(out, "model:          %s\nusername_field: %s\n", resp.Model, resp.UsernameField)
				return err

			default:
				return fmt.Errorf("unknown output format %q", output)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json or yaml")

	return cmd
}

func newRenderCommand(rt *runtime) *cobra.Command {
	var templateName, protocol string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a notification body for a message read from stdin",
		Long: `Reads a message as JSON from stdin and prints the notification body the
notifier would send for it. Nothing is sent.`,
		Example: `  msgctl render < message.json
  msgctl render --template messages/new_message.html --protocol https < message.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd)
			if err != nil {
				return err
			}

			if len(bytes.TrimSpace(data)) == 0 {
				return errEmptyInput
			}

			var msg dto.Message
			if err := json.Unmarshal(data, &msg); err != nil {
				return fmt.Errorf("decoding message: %w", err)
			}

			if err := dto.Validate(&msg); err != nil {
				return fmt.Errorf("invalid message: %w", err)
			}

			ctx := cmd.Context()

			site, err := rt.components.Sites.CurrentSite(ctx)
			if err != nil {
				return fmt.Errorf("resolving current site: %w", err)
			}

			if templateName == "" {
				templateName = rt.cfg.Notify.TemplateName
			}

			if protocol == "" {
				protocol = rt.cfg.Notify.DefaultHTTPProtocol
			}

			body, err := rt.components.Renderer.Render(ctx, templateName, app.NotificationContext{
				SiteURL: protocol + "://" + site.Domain,
				Site:    site,
				Message: msg.ToDomain(),
			})
			if err != nil {
				return fmt.Errorf("rendering %s: %w", templateName, err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), body)

			return err
		},
	}

	cmd.Flags().StringVarP(&templateName, "template", "t", "", "Template name (default: notify.template_name)")
	cmd.Flags().StringVar(&protocol, "protocol", "", "Site URL scheme (default: notify.default_http_protocol)")

	return cmd
}

func newNotifyCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Deliver a message-saved event read from stdin",
		Long: `Reads a message-saved event as JSON from stdin, the same payload the
webhook accepts, and runs the notifier against the configured mail backend.
Unlike the webhook, failures are reported and the exit status is non-zero.`,
		Example: `  msgctl notify < event.json
  APP_MAIL__BACKEND=smtp msgctl notify < event.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd)
			if err != nil {
				return err
			}

			if len(bytes.TrimSpace(data)) == 0 {
				return errEmptyInput
			}

			var req dto.MessageSavedRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("decoding event: %w", err)
			}

			if err := dto.Validate(&req); err != nil {
				return fmt.Errorf("invalid event: %w", err)
			}

			var raw map[string]any
			if err := json.Unmarshal(data, &raw); err != nil {
				return fmt.Errorf("decoding event: %w", err)
			}

			ev := req.ToEvent(raw)
			if err := rt.components.Notifier.NotifyNewMessage(cmd.Context(), ev, req.Options()...); err != nil {
				return err
			}

			status := "sent"
			if !ev.Created || ev.Instance.Recipient.Email == "" {
				status = "skipped"
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), status)

			return err
		},
	}

	return cmd
}
