package harness

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Order is the execution order per baseline step, as document ids.
	Order [][]string `json:"order"`

	// Events is the final timeline, reloaded from the store.
	Events []EventResult `json:"events"`

	// Output holds the lines written by renders, in order.
	Output []string `json:"output"`

	// Error is the pipeline error code of a failed run, "" on success.
	Error string `json:"error,omitempty"`

	// FailedStep is the step a failed run stopped at.
	FailedStep *int `json:"failed_step,omitempty"`

	// Committed is the last committed baseline step, -1 if none.
	Committed int `json:"committed"`

	// Errors lists failed assertions.
	Errors []string `json:"errors,omitempty"`
}

// EventResult is one final event in snapshot form. Times are RFC 3339 UTC.
type EventResult struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Order:     [][]string{},
		Events:    []EventResult{},
		Output:    []string{},
		Committed: -1,
	}
}

// AddError records a failed assertion and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
