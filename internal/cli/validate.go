package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rea/internal/pipeline"
	"github.com/roach88/rea/internal/topology"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool       `json:"valid"`
	Instances int        `json:"instances"`
	Order     [][]string `json:"order"`
}

func (r ValidationResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ Pipeline valid: %d instance(s), %d step(s)", r.Instances, len(r.Order))
	for i, step := range r.Order {
		fmt.Fprintf(&b, "\n  step %d: %s", i, strings.Join(step, " -> "))
	}
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <topology>",
		Short: "Validate a pipeline topology without running it",
		Long: `Validate a pipeline topology (.yaml, .json or .cue) without running it.

Resolves every plugin type against the builtin catalog, checks connections
and the baseline, then computes the execution order. Prints the order of
every baseline step on success.

Exit codes:
  0 - Topology valid
  1 - Topology rejected (unknown type, type mismatch, cycle, etc.)
  2 - Command error (file not found, undecodable file)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	doc, err := loadTopology(formatter, path)
	if err != nil {
		return err
	}

	l, err := importTopology(formatter, ExitFailure, doc, io.Discard, topology.ImportOptions{
		Pipeline: []pipeline.Option{pipeline.WithLogger(newLogger(opts, formatter.GetErrWriter()))},
	})
	if err != nil {
		return err
	}

	order, err := l.Order()
	if err != nil {
		return formatter.FailDetails(ExitFailure, ErrCodeImportFailed, "validation failed", err, map[string]any{
			"code": pipeline.CodeOf(err),
		})
	}

	return formatter.Success(ValidationResult{
		Valid:     true,
		Instances: len(doc.Instances),
		Order:     order,
	})
}
