package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/rea/internal/store"
	"github.com/roach88/rea/internal/timeline"
)

// DefaultTimeline is the stored timeline used when --timeline is not given.
const DefaultTimeline = "default"

// timeLayouts are the accepted --start/--end formats. Layouts without a zone
// are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// EventsOptions holds flags shared by the events subcommands.
type EventsOptions struct {
	*RootOptions
	Timeline string
}

// EventInfo is the printable form of an event.
type EventInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func newEventInfo(e timeline.Event) EventInfo {
	return EventInfo{
		ID:    e.ID().String(),
		Label: e.Label(),
		Start: e.Start().UTC().Format(time.RFC3339),
		End:   e.End().UTC().Format(time.RFC3339),
	}
}

func (e EventInfo) String() string {
	return fmt.Sprintf("%s  %s .. %s  %s", e.ID, e.Start, e.End, e.Label)
}

// EventList is the result of events list.
type EventList struct {
	Timeline string      `json:"timeline"`
	Events   []EventInfo `json:"events"`
}

func (l EventList) String() string {
	if len(l.Events) == 0 {
		return fmt.Sprintf("Timeline %q is empty.", l.Timeline)
	}
	lines := make([]string, len(l.Events))
	for i, e := range l.Events {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}

// NewEventsCommand creates the events command group.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Edit and list the events of a stored timeline",
	}
	cmd.PersistentFlags().StringVar(&opts.Timeline, "timeline", DefaultTimeline, "name of the stored timeline")

	cmd.AddCommand(newEventsAddCommand(opts))
	cmd.AddCommand(newEventsListCommand(opts))
	cmd.AddCommand(newEventsLabelCommand(opts))

	return cmd
}

func newEventsAddCommand(opts *EventsOptions) *cobra.Command {
	var label, start, end string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an event to a timeline",
		Long: `Add an event to a stored timeline, creating the timeline if needed.

Times are RFC 3339 (2026-01-05T09:00:00Z) or "2006-01-02 15:04" in UTC.

Example:
  rea events add --label Standup --start "2026-01-05 09:00" --end "2026-01-05 09:15"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEventsAdd(opts, cmd, label, start, end)
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "event label (required)")
	cmd.Flags().StringVar(&start, "start", "", "start time (required)")
	cmd.Flags().StringVar(&end, "end", "", "end time (required)")
	_ = cmd.MarkFlagRequired("label")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func runEventsAdd(opts *EventsOptions, cmd *cobra.Command, label, rawStart, rawEnd string) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	start, err := parseTime(rawStart)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, "invalid --start", err)
	}
	end, err := parseTime(rawEnd)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, "invalid --end", err)
	}

	return withTimeline(formatter, opts, cmd, func(t *timeline.Table) (any, error) {
		id, err := t.Add(label, start, end)
		if err != nil {
			return nil, formatter.Fail(ExitFailure, ErrCodeInvalidFlag, "event rejected", err)
		}
		e, _ := t.Get(id)
		return newEventInfo(e), nil
	})
}

func newEventsLabelCommand(opts *EventsOptions) *cobra.Command {
	var rawID, suffix string

	cmd := &cobra.Command{
		Use:   "label",
		Short: "Append to the label of an event",
		Long: `Append a suffix to the label of an event.

Labels can only grow: there is no way to replace or shorten one.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts.RootOptions, cmd)
			id, err := uuid.Parse(rawID)
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, "invalid --id", err)
			}
			return withTimeline(formatter, opts, cmd, func(t *timeline.Table) (any, error) {
				if err := t.AppendLabel(id, suffix); err != nil {
					return nil, formatter.Fail(ExitFailure, ErrCodeNotFound, "label not appended", err)
				}
				e, _ := t.Get(id)
				return newEventInfo(e), nil
			})
		},
	}

	cmd.Flags().StringVar(&rawID, "id", "", "event id (required)")
	cmd.Flags().StringVar(&suffix, "suffix", "", "text appended to the label (required)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("suffix")

	return cmd
}

func newEventsListCommand(opts *EventsOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List the events of a timeline",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts.RootOptions, cmd)
			st, err := openStore(formatter, opts.Database)
			if err != nil {
				return err
			}
			defer st.Close()

			t, err := loadTimeline(formatter, st, cmd, opts.Timeline, false)
			if err != nil {
				return err
			}
			list := EventList{Timeline: opts.Timeline, Events: []EventInfo{}}
			for e := range t.All() {
				list.Events = append(list.Events, newEventInfo(e))
			}
			return formatter.Success(list)
		},
	}
}

// withTimeline loads the timeline (empty if not stored yet), applies edit and
// saves the result. Nothing is saved when edit fails.
func withTimeline(f *OutputFormatter, opts *EventsOptions, cmd *cobra.Command, edit func(*timeline.Table) (any, error)) error {
	st, err := openStore(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	t, err := loadTimeline(f, st, cmd, opts.Timeline, true)
	if err != nil {
		return err
	}
	result, err := edit(t)
	if err != nil {
		return err
	}
	if err := st.SaveTimeline(cmd.Context(), opts.Timeline, t); err != nil {
		return f.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to save timeline", err)
	}
	f.VerboseLog("Saved timeline %q (%d event(s))", opts.Timeline, t.Len())
	return f.Success(result)
}

// openStore opens the database at path, reporting failures through f.
func openStore(f *OutputFormatter, path string) (*store.Store, error) {
	f.VerboseLog("Opening database %s", path)
	st, err := store.Open(path)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to open database", err)
	}
	return st, nil
}

// loadTimeline loads the named timeline. A missing timeline is empty when
// create is set and an error otherwise.
func loadTimeline(f *OutputFormatter, st *store.Store, cmd *cobra.Command, name string, create bool) (*timeline.Table, error) {
	t, err := st.LoadTimeline(cmd.Context(), name)
	switch {
	case err == nil:
		return t, nil
	case errors.Is(err, store.ErrNotFound) && create:
		f.VerboseLog("Timeline %q not found, starting empty", name)
		return timeline.New(), nil
	case errors.Is(err, store.ErrNotFound):
		return nil, f.Fail(ExitCommandError, ErrCodeNotFound, "timeline not found", err)
	default:
		return nil, f.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to load timeline", err)
	}
}

// parseTime accepts any of timeLayouts.
func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a time (want RFC 3339 or \"2006-01-02 15:04\")", s)
}
