package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	nethttp "net/http"
	"runtime"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tarmac-project/rqlite"
	"github.com/tarmac-project/rqlite/http"
)

// Version information (set at build time).
var Version = "dev"

// app carries what commands need from the process environment.
type app struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "rqlite-query [flags] SQL [params...]",
		Short: "Run a query against an rqlite node",
		Long: "rqlite-query sends a single read statement to rqlite and prints the result as a table.\n" +
			"Positional params after the SQL are bound server-side; numbers are sent as numbers,\n" +
			"the word null as NULL, and everything else as text.",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, _, c, err := a.connect(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()

			rs, err := c.QueryRaw(ctx, args[0], parseParams(args[1:])...)
			if err != nil {
				return err
			}
			return printTable(a.stdout, rs, opts.NoColor)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	bindFlags(root.PersistentFlags())

	root.AddCommand(newExecCommand(a), newVersionCommand(a))
	return root
}

func newExecCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exec SQL [params...]",
		Short: "Run a write statement",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, _, c, err := a.connect(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()

			res, err := c.Exec(ctx, args[0], parseParams(args[1:])...)
			if err != nil {
				return err
			}
			return printExec(a.stdout, res, opts.NoColor)
		},
	}
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print client and server version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(a.stdout, "rqlite-query version %s\n", Version)
			fmt.Fprintf(a.stdout, "  Go Version: %s\n", runtime.Version())

			opts, tr, _, err := a.connect(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()

			v, err := tr.Version(ctx)
			if err != nil {
				return fmt.Errorf("server version: %w", err)
			}
			fmt.Fprintf(a.stdout, "  Server Version: %s\n", v)
			return nil
		},
	}
}

// connect resolves configuration and builds the transport and client.
func (a *app) connect(cmd *cobra.Command) (options, *http.Transport, *rqlite.Client, error) {
	opts, err := loadConfig(a.fs, cmd.Flags())
	if err != nil {
		return options{}, nil, nil, err
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	tr, err := http.New(http.Config{
		BaseURL:    opts.URL,
		HTTPClient: &nethttp.Client{Timeout: opts.Timeout},
		Username:   opts.Username,
		Password:   opts.Password,
		Level:      rqlite.Level(opts.Level),
		Logger:     logger,
	})
	if err != nil {
		return options{}, nil, nil, err
	}

	c, err := rqlite.New(rqlite.Config{Transport: tr, Logger: logger})
	if err != nil {
		return options{}, nil, nil, err
	}
	return opts, tr, c, nil
}

// parseParams converts command-line arguments into statement parameters.
func parseParams(args []string) []rqlite.Param {
	params := make([]rqlite.Param, 0, len(args))
	for _, arg := range args {
		switch {
		case arg == "null":
			params = append(params, rqlite.Null())
		case isNumber(arg):
			params = append(params, rqlite.Numeric(json.Number(arg)))
		default:
			params = append(params, rqlite.Text(arg))
		}
	}
	return params
}

// isNumber accepts finite numbers spelled as valid JSON, so 1e3 is a number
// but 007 and +5 are text.
func isNumber(s string) bool {
	_, err := rqlite.Numeric(json.Number(s)).Literal()
	return err == nil
}
