package render

import "time"

// Outcome classifies a finished render.
type Outcome string

const (
	OutcomeRendered    Outcome = "rendered"
	OutcomePlaceholder Outcome = "placeholder"
	OutcomeDeduped     Outcome = "deduped"
)

// Observer receives render events. Implementations must be safe for
// concurrent use.
type Observer interface {
	ModuleRendered(moduleID string, outcome Outcome, elapsed time.Duration)
	ScriptRejected(moduleID string, reason error)
}

type nopObserver struct{}

func (nopObserver) ModuleRendered(string, Outcome, time.Duration) {}
func (nopObserver) ScriptRejected(string, error)                 {}
