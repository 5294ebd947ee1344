package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/kr/pretty"
	"github.com/njchilds90/gosymdiff"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func evalCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "eval [file]",
		Short: "Evaluate an expression",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _, err := readExpr(cmd, args, cfg)
			if err != nil {
				return err
			}
			b, err := parseBindings(cfg.Set)
			if err != nil {
				return err
			}
			v, err := evaluate(cfg, root, b)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(v, 'g', -1, 64))
			return nil
		},
	}
}

func diffCmd(cfg *Config) *cobra.Command {
	var wrt string
	cmd := &cobra.Command{
		Use:   "diff [file] --wrt name",
		Short: "Differentiate with respect to one variable",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, scope, err := readExpr(cmd, args, cfg)
			if err != nil {
				return err
			}
			b, err := parseBindings(cfg.Set)
			if err != nil {
				return err
			}
			target, ok := scope.Lookup(wrt)
			if !ok {
				slog.Warn("variable not in expression, derivative is zero", "var", wrt)
				target = gosymdiff.Var(wrt)
			}
			d := gosymdiff.Derivative(root, target)
			out := cmd.OutOrStdout()
			if err := printExpr(out, cfg.Format, d); err != nil {
				return err
			}
			if len(b) == 0 {
				return nil
			}
			v, err := evaluate(cfg, d, b)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "= %s\n", strconv.FormatFloat(v, 'g', -1, 64))
			return nil
		},
	}
	cmd.Flags().StringVar(&wrt, "wrt", "", "Variable to differentiate with respect to")
	_ = cmd.MarkFlagRequired("wrt")
	return cmd
}

func gradCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "grad [file]",
		Short: "Differentiate with respect to every variable",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _, err := readExpr(cmd, args, cfg)
			if err != nil {
				return err
			}
			b, err := parseBindings(cfg.Set)
			if err != nil {
				return err
			}
			grads := gosymdiff.GradientByName(root)
			names := make([]string, 0, len(grads))
			for name := range grads {
				names = append(names, name)
			}
			slices.Sort(names)

			var values []float64
			if len(b) > 0 {
				values, err = evaluateAll(cfg, names, grads, b)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for i, name := range names {
				fmt.Fprintf(out, "d/d%s = ", name)
				if err := printExpr(out, cfg.Format, grads[name]); err != nil {
					return err
				}
				if values != nil {
					fmt.Fprintf(out, "  = %s\n", strconv.FormatFloat(values[i], 'g', -1, 64))
				}
			}
			return nil
		},
	}
}

// evaluateAll evaluates each partial derivative on its own goroutine. An
// Evaluator is single-goroutine, so every worker gets its own.
func evaluateAll(cfg *Config, names []string, grads map[string]*gosymdiff.Node, b gosymdiff.Bindings) ([]float64, error) {
	values := make([]float64, len(names))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		g.Go(func() error {
			v, err := evaluate(cfg, grads[name], b)
			if err != nil {
				return fmt.Errorf("d/d%s: %w", name, err)
			}
			values[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}

func varsCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "vars [file]",
		Short: "List the variables of an expression",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, scope, err := readExpr(cmd, args, cfg)
			if err != nil {
				return err
			}
			for _, name := range scope.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func showCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show [file]",
		Short: "Print an expression with its graph statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _, err := readExpr(cmd, args, cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "expr:  %s\n", root)
			fmt.Fprintf(out, "latex: %s\n", root.LaTeX())
			fmt.Fprintf(out, "nodes: %d\n", gosymdiff.Size(root))
			fmt.Fprintf(out, "paths: %s\n", gosymdiff.CountPaths(root))
			return nil
		},
	}
}

func readExpr(cmd *cobra.Command, args []string, cfg *Config) (*gosymdiff.Node, *gosymdiff.Scope, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read expression: %w", err)
	}
	scope := gosymdiff.NewScope()
	root, err := gosymdiff.ParseJSONScope(data, scope)
	if err != nil {
		return nil, nil, fmt.Errorf("parse expression: %w", err)
	}
	if cfg.Debug {
		slog.Debug("expression structure", "tape", pretty.Sprint(gosymdiff.Flatten(root)))
	}
	return root, scope, nil
}

func parseBindings(set []string) (gosymdiff.Bindings, error) {
	b := gosymdiff.Bindings{}
	for _, kv := range set {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid binding %q, want name=value", kv)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid binding %q: %w", kv, err)
		}
		b[name] = v
	}
	return b, nil
}

func evaluate(cfg *Config, n *gosymdiff.Node, b gosymdiff.Bindings) (float64, error) {
	ev := gosymdiff.NewEvaluator()
	var opts []gosymdiff.EvalOption
	if cfg.NoCache {
		opts = append(opts, gosymdiff.NoCache())
	}
	v, err := ev.Eval(n, b, opts...)
	if err != nil {
		return 0, err
	}
	slog.Debug("evaluated", "value", v, "stats", ev.Stats())
	return v, nil
}

func printExpr(w io.Writer, format string, n *gosymdiff.Node) error {
	switch format {
	case "text":
		fmt.Fprintln(w, n.String())
	case "latex":
		fmt.Fprintln(w, n.LaTeX())
	case "json":
		s, err := gosymdiff.ToJSON(n)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, s)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}
