package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// logger is configured from the persistent flags before any command runs.
var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "elastica",
		Short: "Call the elastica native add function",
		Long: `Calls the elastica add function through each of the surfaces it is exposed on:
plain Go, cgo, the host marshaling layer and a WebAssembly host module.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd)
		},
	}

	root.PersistentFlags().Var(newEnumValue("info", "debug", "info", "warn", "error"), "log-level", "Log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("no-color", false, "Disable colored log output")

	root.AddCommand(newAddCmd(), newBenchCmd(), newInfoCmd())
	return root
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := execute(context.Background(), rootCmd, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func execute(ctx context.Context, root *cobra.Command, args []string) error {
	root.SetArgs(escapeOperands(root, args))
	return root.ExecuteContext(ctx)
}

func setupLogging(cmd *cobra.Command) error {
	levelName, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return err
	}
	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", levelName, err)
	}

	dest := cmd.ErrOrStderr()
	if f, ok := dest.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		noColor = true
	}

	logger = slog.New(tint.NewHandler(dest, &tint.Options{
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
		Level:      level,
	}))
	return nil
}
