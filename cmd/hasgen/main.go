package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// This binary is a code-generation tool.
//
// It reads a list of (component type, field) pairs for one aggregate, from a
// spec file or from `has` struct tags, and emits one pointer-receiver accessor
// plus one Has<Name> capability interface per pair.
//
// Key behaviors:
// - Validates the pairs; a component type registered twice is an error
// - Type-checks them against the aggregate's package (go/packages)
// - Reuses the owner file's imports for qualified component types
// - Formats output and prunes unused imports (x/tools/imports)
// - Writes output atomically (temp file + rename)

// usageError marks invocation mistakes (exit code 2).
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// options are the parsed command-line flags.
type options struct {
	specs    []string
	typeName string
	dir      string
	out      string
	noCheck  bool
	logLevel string
	suffix   string
}

// run executes the generator and returns an exit code:
// 0 success, 1 generation failure, 2 usage error.
// It exists separately from main to allow unit testing without os.Exit.
func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := loadEnvConfig()
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "hasgen:", err)
		return 2
	}

	cmd := newRootCmd(cfg, stdout, stderr)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(stderr, "hasgen:", err)

		var usage *usageError
		if errors.As(err, &usage) {
			_, _ = fmt.Fprintln(stderr, cmd.UsageString())
			return 2
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func newRootCmd(cfg envConfig, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "hasgen",
		Short: "Generate read-only component accessors for an aggregate",
		Long: `hasgen emits one accessor method and one Has<Name> capability interface per
(component type, field) pair registered on an aggregate struct.

Pairs come from a spec file (.json, .yaml, .yml, .toml):

	hasgen --spec specs/env.has.yaml --out env_has.gen.go

or from struct tags on the aggregate (has:"", has:"Name", has:"-"):

	hasgen --type Listener`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("unexpected arguments: %v", args)
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.Context(), opts, stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	bindFlags(cmd.Flags(), opts, cfg)
	return cmd
}

// bindFlags registers flags with environment-derived defaults.
func bindFlags(flags *pflag.FlagSet, opts *options, cfg envConfig) {
	flags.StringArrayVar(&opts.specs, "spec", nil, "path to a *.has.{json,yaml,yml,toml} spec (repeatable)")
	flags.StringVar(&opts.typeName, "type", "", "aggregate type whose has-tagged fields are registered")
	flags.StringVar(&opts.dir, "dir", ".", "package directory of the aggregate")
	flags.StringVar(&opts.out, "out", "", "output .go file path, or - for stdout (default <aggregate>"+cfg.Suffix+")")
	flags.BoolVar(&opts.noCheck, "no-check", cfg.NoCheck, "skip type-checking the spec against the aggregate's package")
	flags.StringVar(&opts.logLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flags.StringVar(&opts.suffix, "suffix", cfg.Suffix, "file name suffix for default output paths")
}

func runGenerate(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	jobs, err := buildJobs(opts)
	if err != nil {
		return err
	}

	logger, err := newLogger(stderr, opts.logLevel)
	if err != nil {
		return &usageError{err: err}
	}

	g := &generator{
		logger: logger,
		stdout: stdout,
		check:  !opts.noCheck,
		suffix: opts.suffix,
	}
	return g.generateAll(ctx, jobs)
}

// buildJobs validates flag combinations and turns them into jobs.
func buildJobs(opts *options) ([]job, error) {
	typeName := strings.TrimSpace(opts.typeName)

	switch {
	case len(opts.specs) > 0 && typeName != "":
		return nil, usagef("use only one of --spec or --type")
	case len(opts.specs) == 0 && typeName == "":
		return nil, usagef("missing --spec or --type")
	case len(opts.specs) > 1 && opts.out != "":
		return nil, usagef("--out cannot be combined with several --spec files")
	case strings.TrimSpace(opts.suffix) == "" || !strings.HasSuffix(opts.suffix, ".go"):
		return nil, usagef("--suffix must end in .go, got %q", opts.suffix)
	}

	if typeName != "" {
		return []job{{typeName: typeName, dir: opts.dir, outPath: opts.out}}, nil
	}

	jobs := make([]job, 0, len(opts.specs))
	for _, specPath := range opts.specs {
		if strings.TrimSpace(specPath) == "" {
			return nil, usagef("--spec must not be empty")
		}
		jobs = append(jobs, job{specPath: specPath, dir: opts.dir, outPath: opts.out})
	}
	return jobs, nil
}
