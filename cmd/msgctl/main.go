// Package main is the entry point for msgctl.
package main

import (
	"os"

	"github.com/jsamuelsen/message-notifier/internal/adapters/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
