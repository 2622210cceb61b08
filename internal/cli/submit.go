package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raysh454/thamos/internal/analyzer"
)

type submitFlags struct {
	debug  bool
	force  bool
	noWait bool
}

func (f *submitFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.debug, "debug", false, "Run the analysis in debug mode")
	cmd.Flags().BoolVar(&f.force, "force", false, "Do not reuse cached results")
	cmd.Flags().BoolVar(&f.noWait, "no-wait", false, "Print the analysis id and return without waiting for the result")
}

type stackFlags struct {
	requirements     string
	requirementsLock string
}

func (f *stackFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.requirements, "requirements", "Pipfile", "Path to the Pipfile")
	cmd.Flags().StringVar(&f.requirementsLock, "requirements-lock", "Pipfile.lock", "Path to the Pipfile.lock")
}

// read returns the Pipfile content and the lock content, if a lock exists.
func (f *stackFlags) read() (string, string, error) {
	requirements, err := os.ReadFile(f.requirements)
	if err != nil {
		return "", "", fmt.Errorf("read requirements: %w", err)
	}
	lock, err := os.ReadFile(f.requirementsLock)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", "", fmt.Errorf("read requirements lock: %w", err)
	}
	return string(requirements), string(lock), nil
}

// requireContent rejects empty input before the service is contacted.
func requireContent(what, content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: %s is empty", analyzer.ErrInvalidInput, what)
	}
	return nil
}

func newAdviseCmd(s *session) *cobra.Command {
	var (
		stack   stackFlags
		submit  submitFlags
		envName string
		recType string
		limit   int
		count   int
	)

	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Ask Thoth for a recommended application stack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			requirements, lock, err := stack.read()
			if err != nil {
				return err
			}
			if err := requireContent(stack.requirements, requirements); err != nil {
				return err
			}
			req := analyzer.AdviseRequest{
				Requirements:           requirements,
				RequirementsLock:       lock,
				RuntimeEnvironmentName: envName,
				RecommendationType:     recType,
				Debug:                  submit.debug,
				Force:                  submit.force,
				NoWait:                 submit.noWait,
			}
			if cmd.Flags().Changed("limit") {
				req.Limit = &limit
			}
			if cmd.Flags().Changed("count") {
				req.Count = &count
			}

			return s.withAnalyzer(cmd.Context(), func(ctx context.Context, an *analyzer.Analyzer) error {
				sub, err := an.Advise(ctx, req)
				if err != nil {
					return err
				}
				return printSubmission(cmd.OutOrStdout(), sub)
			})
		},
	}

	stack.register(cmd)
	submit.register(cmd)
	cmd.Flags().StringVarP(&envName, "runtime-environment", "r", "", "Name of the configured runtime environment to use")
	cmd.Flags().StringVarP(&recType, "recommendation-type", "t", "", "Recommendation type, overrides configuration")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of stacks the resolver considers")
	cmd.Flags().IntVar(&count, "count", 1, "Number of recommended stacks to report")
	return cmd
}

func newProvenanceCheckCmd(s *session) *cobra.Command {
	var (
		stack  stackFlags
		submit submitFlags
	)

	cmd := &cobra.Command{
		Use:   "provenance-check",
		Short: "Check the provenance of packages in a locked application stack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			requirements, lock, err := stack.read()
			if err != nil {
				return err
			}
			if err := requireContent(stack.requirements, requirements); err != nil {
				return err
			}
			if lock == "" {
				return fmt.Errorf("provenance check requires a lock file, %s not found", stack.requirementsLock)
			}

			return s.withAnalyzer(cmd.Context(), func(ctx context.Context, an *analyzer.Analyzer) error {
				sub, err := an.ProvenanceCheck(ctx, analyzer.ProvenanceRequest{
					Requirements:     requirements,
					RequirementsLock: lock,
					Debug:            submit.debug,
					Force:            submit.force,
					NoWait:           submit.noWait,
				})
				if err != nil {
					return err
				}
				return printSubmission(cmd.OutOrStdout(), sub)
			})
		},
	}

	stack.register(cmd)
	submit.register(cmd)
	return cmd
}

func newImageAnalysisCmd(s *session) *cobra.Command {
	var (
		submit      submitFlags
		user        string
		password    string
		noVerifyTLS bool
	)

	cmd := &cobra.Command{
		Use:   "image-analysis IMAGE",
		Short: "Analyze the content of a container image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireContent("image name", args[0]); err != nil {
				return err
			}
			verify := !noVerifyTLS
			req := analyzer.ImageAnalysisRequest{
				Image:            args[0],
				RegistryUser:     user,
				RegistryPassword: password,
				VerifyTLS:        &verify,
				Debug:            submit.debug,
				Force:            submit.force,
				NoWait:           submit.noWait,
			}

			return s.withAnalyzer(cmd.Context(), func(ctx context.Context, an *analyzer.Analyzer) error {
				sub, err := an.ImageAnalysis(ctx, req)
				if err != nil {
					return err
				}
				return printSubmission(cmd.OutOrStdout(), sub)
			})
		},
	}

	submit.register(cmd)
	cmd.Flags().StringVar(&user, "registry-user", "", "User for the image registry")
	cmd.Flags().StringVar(&password, "registry-password", "", "Password for the image registry")
	cmd.Flags().BoolVar(&noVerifyTLS, "no-verify-tls", false, "Do not verify TLS when pulling the image")
	return cmd
}

// printSubmission writes the outcome of a submission. An analysis that finished
// without a result is an error; its cause was already logged.
func printSubmission(w io.Writer, sub *analyzer.Submission) error {
	switch sub.State {
	case analyzer.StateSubmitted:
		_, err := fmt.Fprintln(w, sub.AnalysisID)
		return err
	case analyzer.StateResultAbsent:
		return fmt.Errorf("%s %s finished without a result", sub.Kind, sub.AnalysisID)
	case analyzer.StateResultAvailable:
		out := map[string]any{"analysis_id": sub.AnalysisID}
		switch sub.Kind {
		case analyzer.KindAdvise, analyzer.KindProvenanceCheck:
			out["report"] = rawOrNull(sub.Report)
			out["error"] = rawOrNull(sub.Error)
		case analyzer.KindImageAnalysis:
			out["result"] = rawOrNull(sub.Result)
		}
		return printJSON(w, out)
	default:
		return fmt.Errorf("unexpected submission state %s", sub.State)
	}
}

func rawOrNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}
