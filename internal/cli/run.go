package cli

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/rea/internal/pipeline"
	"github.com/roach88/rea/internal/topology"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Timeline string
	From     int
	Until    int // -1 runs to the last step
}

// RunResult is the outcome of a successful run.
type RunResult struct {
	Timeline  string   `json:"timeline"`
	From      int      `json:"from"`
	Committed int      `json:"committed"`
	Events    int      `json:"events"`
	Digest    string   `json:"digest"`
	Output    []string `json:"output"`
}

func (r RunResult) String() string {
	var b strings.Builder
	for _, line := range r.Output {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "✓ Steps %d..%d committed to %q (%d event(s))", r.From, r.Committed, r.Timeline, r.Events)
	return b.String()
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <topology>",
		Short: "Run a pipeline against a stored timeline",
		Long: `Run a pipeline topology against a timeline stored in the database.

The timeline is loaded (empty if it does not exist yet), baseline steps
--from..--until are executed as one run, and the resulting timeline is
saved back. When a step fails the steps before it stay committed and are
saved; rerun with --from set to the failed step to resume.

Exit codes:
  0 - Run completed
  1 - Run failed (a plugin failed, missing connection, etc.)
  2 - Command error (bad topology, database error)

Example:
  rea run --db ./rea.db --timeline monday ./day.yaml
  rea run --db ./rea.db --timeline monday --until 0 ./day.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Timeline, "timeline", DefaultTimeline, "name of the stored timeline")
	cmd.Flags().IntVar(&opts.From, "from", 0, "first baseline step to run")
	cmd.Flags().IntVar(&opts.Until, "until", -1, "last baseline step to run (-1 for the last step)")

	return cmd
}

func runPipeline(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	doc, err := loadTopology(formatter, path)
	if err != nil {
		return err
	}

	st, err := openStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	t, err := loadTimeline(formatter, st, cmd, opts.Timeline, true)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	l, err := importTopology(formatter, ExitCommandError, doc, &out, topology.ImportOptions{
		Pipeline: []pipeline.Option{
			pipeline.WithLogger(newLogger(opts.RootOptions, formatter.GetErrWriter())),
			pipeline.WithTimeline(t),
		},
	})
	if err != nil {
		return err
	}
	p := l.Pipeline

	until := opts.Until
	if until < 0 {
		until = len(p.Baseline()) - 1
	}
	formatter.VerboseLog("Running steps %d..%d against timeline %q", opts.From, until, opts.Timeline)
	runErr := p.RunRange(opts.From, until)

	status := p.Status()
	if status.Committed >= opts.From {
		if err := st.SaveTimeline(ctx, opts.Timeline, p.Timeline()); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to save timeline", err)
		}
		formatter.VerboseLog("Saved timeline %q through step %d", opts.Timeline, status.Committed)
	}

	if runErr != nil {
		details := map[string]any{
			"code":      pipeline.CodeOf(runErr),
			"committed": status.Committed,
		}
		var re *pipeline.RunError
		if errors.As(runErr, &re) {
			details["step"] = re.Step
			if re.Instance != uuid.Nil {
				details["instance"] = l.Ref(re.Instance)
			}
		}
		return formatter.FailDetails(ExitFailure, ErrCodeRunFailed, "run failed", runErr, details)
	}

	if err := st.SaveTopology(ctx, opts.Timeline, doc); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to save topology", err)
	}

	digest, err := p.Timeline().Digest()
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, "failed to digest timeline", err)
	}
	result := RunResult{
		Timeline:  opts.Timeline,
		From:      opts.From,
		Committed: status.Committed,
		Events:    p.Timeline().Len(),
		Digest:    digest,
		Output:    []string{},
	}
	for _, line := range strings.Split(out.String(), "\n") {
		if line != "" {
			result.Output = append(result.Output, line)
		}
	}
	return formatter.Success(result)
}
