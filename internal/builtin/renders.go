package builtin

import (
	"fmt"
	"io"
	"time"

	"github.com/roach88/rea/internal/plugin"
	"github.com/roach88/rea/internal/timeline"
	"github.com/roach88/rea/internal/value"
)

// Agenda writes one line per event.
type Agenda struct {
	w io.Writer
}

// NewAgenda returns an Agenda writing to w.
func NewAgenda(w io.Writer) *Agenda {
	return &Agenda{w: w}
}

func (a *Agenda) Name() string         { return "agenda" }
func (a *Agenda) Inputs() plugin.Ports { return nil }

func (a *Agenda) Run(snapshot timeline.Reader, _ value.Map) error {
	for e := range snapshot.All() {
		start, end := e.Start().UTC(), e.End().UTC()
		if _, err := fmt.Fprintf(a.w, "%s %s-%s %s\n",
			start.Format(time.DateOnly), start.Format("15:04"), end.Format("15:04"), e.Label()); err != nil {
			return err
		}
	}
	return nil
}

// Summary writes the event count and total duration under a title.
type Summary struct {
	w io.Writer
}

// NewSummary returns a Summary writing to w.
func NewSummary(w io.Writer) *Summary {
	return &Summary{w: w}
}

func (s *Summary) Name() string         { return "summary" }
func (s *Summary) Inputs() plugin.Ports { return plugin.Ports{"title": value.TypeString} }

func (s *Summary) Run(snapshot timeline.Reader, in value.Map) error {
	var total time.Duration
	for e := range snapshot.All() {
		total += e.Duration()
	}
	_, err := fmt.Fprintf(s.w, "%s: %d event(s), %s\n", in["title"].(value.String), snapshot.Len(), total)
	return err
}
