package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

// Config holds the flags shared by every subcommand.
type Config struct {
	Debug   bool
	NoCache bool
	Set     []string
	Format  string
}

func main() {
	ctx := context.Background()
	if err := fang.Execute(ctx, newRootCmd(),
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &Config{}

	rootCmd := &cobra.Command{
		Use:   "gosymdiff",
		Short: "Reverse-mode symbolic differentiation",
		Long: `gosymdiff differentiates and evaluates scalar expressions.

Expressions are JSON trees read from a file argument or stdin:

  {"type": "mul", "a": {"type": "var", "name": "x"}, "b": {"type": "func", "name": "sin", "arg": {"type": "var", "name": "x"}}}`,
		Example: `  # Evaluate at x=2
  gosymdiff eval expr.json --set x=2

  # d/dx, printed and evaluated
  gosymdiff diff expr.json --wrt x --set x=2

  # Every partial derivative
  gosymdiff grad expr.json --set x=2 --set y=3`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), cfg.Debug)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging and structure dumps")
	rootCmd.PersistentFlags().BoolVar(&cfg.NoCache, "no-cache", false, "Evaluate without the result cache")
	rootCmd.PersistentFlags().StringArrayVar(&cfg.Set, "set", nil, "Variable binding name=value (repeatable)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Format, "format", "f", "text", "Expression output format: text, latex or json")

	rootCmd.AddCommand(
		evalCmd(cfg),
		diffCmd(cfg),
		gradCmd(cfg),
		varsCmd(cfg),
		showCmd(cfg),
	)
	return rootCmd
}

func setupLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(w, &tint.Options{Level: level})))
}
