// Package arena is the boundary to the external agent and judge
// capabilities. The round engine consumes these interfaces only; everything
// provider-specific lives behind them, with failure modes folded into the
// two upstream error classes.
package arena

import (
	"context"
	"errors"

	"github.com/cafegames/elimination-arena/internal/domain/degradation"
)

// Upstream failures. Either one marks the participant as forfeited for the
// round; neither is fatal to the run.
var (
	// ErrUpstreamUnavailable covers transport failures and provider outages.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrUpstreamRejected covers requests the provider refused, e.g. a
	// degraded sampling temperature outside the provider's valid range.
	ErrUpstreamRejected = errors.New("upstream rejected request")
)

// Responder produces a participant's textual response to a challenge under
// the resource configuration its current level allows.
type Responder interface {
	Respond(ctx context.Context, participantID string, cfg degradation.Config, challenge string) (string, error)
}

// Verdict is the judge's outcome: exactly one best and one worst among the
// participants who responded.
type Verdict struct {
	Best      string `json:"best"`
	Worst     string `json:"worst"`
	Reasoning string `json:"reasoning"`
}

// Judge selects the best and worst response of a round.
type Judge interface {
	Judge(ctx context.Context, challenge string, responses map[string]string) (Verdict, error)
}

// IntentKind identifies an economic action a participant wants to take.
type IntentKind string

const (
	IntentSelfRescue IntentKind = "self_rescue"
	IntentResurrect  IntentKind = "resurrect"
	IntentDonate     IntentKind = "donate"
	IntentLoan       IntentKind = "loan"
)

// Intent is one economic action requested by a participant for this round.
// Intents are validated and applied by the engine in a fixed order
// (rescues, resurrections, donations, loan offers); invalid ones are dropped.
type Intent struct {
	Kind           IntentKind `json:"kind"`
	ActorID        string     `json:"actor_id"`
	TargetID       string     `json:"target_id,omitempty"`
	Amount         int        `json:"amount,omitempty"`
	InterestRate   float64    `json:"interest_rate,omitempty"`
	DurationRounds int        `json:"duration_rounds,omitempty"`
}

// IntentCollector asks a participant for its economic intents given a
// briefing of the game state. Failures are non-fatal: the participant simply
// takes no economic action this round.
type IntentCollector interface {
	Collect(ctx context.Context, participantID, briefing string) ([]Intent, error)
}
