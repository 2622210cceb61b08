// Package cli implements the thamos command tree.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/raysh454/thamos/internal/analyzer"
	"github.com/raysh454/thamos/internal/app"
	"github.com/raysh454/thamos/internal/logging"
	"github.com/raysh454/thamos/internal/registry"
)

// Config holds what the command tree needs from its environment. Zero fields
// fall back to the process defaults.
type Config struct {
	// Logger replaces the stderr logger built from --verbose.
	Logger logging.Logger

	// IsTerminal reports whether progress output can be drawn.
	IsTerminal func() bool
}

func (c *Config) applyDefaults() {
	if c.IsTerminal == nil {
		c.IsTerminal = func() bool {
			fd := os.Stderr.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		}
	}
}

type rootFlags struct {
	configPath string
	host       string
	noProgress bool
	verbose    bool
}

// session is the state of one command execution.
type session struct {
	cfg    Config
	flags  rootFlags
	app    *app.Application
	logger logging.Logger
	reg    *registry.Registry
}

// NewCommand creates the root thamos command with all subcommands.
func NewCommand(cfg Config) *cobra.Command {
	cfg.applyDefaults()
	s := &session{cfg: cfg}

	cmd := &cobra.Command{
		Use:           "thamos",
		Short:         "Client for the Thoth recommendation service",
		Long:          "Submit advises, provenance checks and image analyses to Thoth and inspect their logs and status.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.setup(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&s.flags.configPath, "config", app.DefaultConfigFile, "Path to the configuration file")
	pf.StringVar(&s.flags.host, "host", "", "Thoth host to talk to, overrides configuration")
	pf.BoolVar(&s.flags.noProgress, "no-progress", false, "Do not show progress while waiting for results")
	pf.BoolVarP(&s.flags.verbose, "verbose", "v", false, "Log debug messages")

	cmd.AddCommand(
		newAdviseCmd(s),
		newProvenanceCheckCmd(s),
		newImageAnalysisCmd(s),
		newLogCmd(s),
		newStatusCmd(s),
		newHistoryCmd(s),
		newConfigCmd(s),
	)
	for _, sub := range cmd.Commands() {
		sub.RunE = s.closing(sub.RunE)
	}
	return cmd
}

// closing releases the session after run returns, including on failure.
func (s *session) closing(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if cerr := s.close(); err == nil {
				err = cerr
			}
		}()
		return run(cmd, args)
	}
}

func (s *session) setup(cmd *cobra.Command) error {
	s.logger = s.cfg.Logger
	if s.logger == nil {
		s.logger = logging.NewStderrLogger("thamos", s.flags.verbose)
	}

	conf, err := app.Load(s.flags.configPath)
	if err != nil {
		return err
	}

	s.app = app.NewApplication(conf, s.logger)
	s.app.Host = s.flags.host
	s.app.Feedback = analyzer.SelectFeedback(
		conf.Progress && !s.flags.noProgress && s.cfg.IsTerminal(),
		s.flags.verbose,
		cmd.ErrOrStderr(),
	)
	return nil
}

func (s *session) close() error {
	if s.reg == nil {
		return nil
	}
	err := s.reg.Close()
	s.reg = nil
	return err
}

// history opens the local analysis history on first use.
func (s *session) history() (*registry.Registry, error) {
	if s.reg != nil {
		return s.reg, nil
	}
	root, err := app.ExpandPath(s.app.Config.StorageRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	reg, err := registry.Open(root, s.logger)
	if err != nil {
		return nil, err
	}
	s.reg = reg.ForHost(s.app.ClientFactory().Host())
	return s.reg, nil
}

// withAnalyzer runs fn with an analyzer whose submissions are recorded in the
// local history. A history that cannot be opened only costs the record.
func (s *session) withAnalyzer(ctx context.Context, fn func(context.Context, *analyzer.Analyzer) error) error {
	if reg, err := s.history(); err != nil {
		s.logger.Warn("analysis history unavailable", logging.Field{Key: "error", Value: err})
	} else {
		s.app.Recorder = reg
	}
	return s.app.WithAPIClient(ctx, fn)
}

// resolveID returns id, or the most recent analysis in the history when id is empty.
func (s *session) resolveID(ctx context.Context, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	reg, err := s.history()
	if err != nil {
		return "", err
	}
	last, err := reg.Last(ctx, "")
	if err != nil {
		if errors.Is(err, registry.ErrAnalysisNotFound) {
			return "", errors.New("no analysis id given and no analysis submitted yet")
		}
		return "", err
	}
	s.logger.Debug("using last analysis", logging.Field{Key: "analysis_id", Value: last.AnalysisID})
	return last.AnalysisID, nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
