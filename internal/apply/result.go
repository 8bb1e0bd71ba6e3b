package apply

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mesh-intelligence/tablectl/pkg/types"
)

// State is the position of one change in the apply state machine:
// Pending -> Submitted -> Succeeded | Failed. A change that cannot be
// loaded goes from Pending straight to Failed.
type State int

// Apply states.
const (
	StatePending State = iota
	StateSubmitted
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSubmitted:
		return "submitted"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome says how a succeeded change ended.
type Outcome string

// Outcomes.
const (
	OutcomeCreated       Outcome = "created"
	OutcomeAlreadyExists Outcome = "already-exists"
	OutcomeNotReplaced   Outcome = "not-replaced" // modified definition, table left as is
	OutcomeDeleted       Outcome = "deleted"
	OutcomeAlreadyAbsent Outcome = "already-absent"
	OutcomeSuperseded    Outcome = "superseded" // delete skipped, table still declared
	OutcomeDryRun        Outcome = "dry-run"
)

// Result is the final state of one change.
type Result struct {
	Path     string
	Kind     types.ChangeKind
	Identity types.Identity
	State    State
	Outcome  Outcome
	Attempts int
	Err      error
}

func (r *Result) submit() {
	if r.State == StatePending {
		r.State = StateSubmitted
	}
}

func (r *Result) succeed(o Outcome) {
	if r.State == StateSubmitted {
		r.State = StateSucceeded
		r.Outcome = o
	}
}

func (r *Result) fail(err error) {
	if r.State == StatePending || r.State == StateSubmitted {
		r.State = StateFailed
		r.Err = err
	}
}

// ErrorKind returns the error kind of a failed result, or "".
func (r Result) ErrorKind() string {
	if r.Err == nil {
		return ""
	}
	return types.ErrorKind(r.Err)
}

// label names the result in summaries: the table identity with the path
// in parentheses, or whichever of the two is known.
func (r Result) label() string {
	id := r.Identity.String()
	switch {
	case id == "":
		return r.Path
	case r.Path == "":
		return id
	default:
		return id + " (" + r.Path + ")"
	}
}

// MarshalJSON renders the result for --json output.
func (r Result) MarshalJSON() ([]byte, error) {
	out := struct {
		Path      string `json:"path,omitempty"`
		Change    string `json:"change"`
		Table     string `json:"table,omitempty"`
		State     string `json:"state"`
		Outcome   string `json:"outcome,omitempty"`
		Attempts  int    `json:"attempts"`
		ErrorKind string `json:"error_kind,omitempty"`
		Error     string `json:"error,omitempty"`
	}{
		Path:      r.Path,
		Change:    r.Kind.String(),
		Table:     r.Identity.String(),
		State:     r.State.String(),
		Outcome:   string(r.Outcome),
		Attempts:  r.Attempts,
		ErrorKind: r.ErrorKind(),
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// Report is the aggregate result of one run, in change order.
type Report struct {
	Results []Result `json:"results"`
}

// OK reports whether every change succeeded.
func (r *Report) OK() bool {
	for _, res := range r.Results {
		if res.State != StateSucceeded {
			return false
		}
	}
	return true
}

// Failed returns the results that did not succeed.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.State != StateSucceeded {
			out = append(out, res)
		}
	}
	return out
}

// WriteSummary prints one line per change followed by the failures with
// their error kinds.
func (r *Report) WriteSummary(w io.Writer) {
	failed := r.Failed()
	fmt.Fprintf(w, "%d change(s): %d succeeded, %d failed\n",
		len(r.Results), len(r.Results)-len(failed), len(failed))

	for _, res := range r.Results {
		if res.State == StateSucceeded {
			fmt.Fprintf(w, "  ok      %-15s %s\n", res.Outcome, res.label())
		}
	}
	for _, res := range failed {
		fmt.Fprintf(w, "  FAILED  %-15s %s: %v\n", res.ErrorKind(), res.label(), res.Err)
	}
}
