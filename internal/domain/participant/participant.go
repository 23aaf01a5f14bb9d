// Package participant defines the core domain entities for arena contestants.
// This package is PURE and must NOT import any infrastructure packages (network, events, platform).
package participant

// Level bounds. MinLevel is a transient sentinel: reaching it triggers
// elimination at the end of the round.
const (
	MinLevel = -6
	MaxLevel = 3
)

// Participant represents the state of a contestant in the arena.
type Participant struct {
	ID    string `json:"id"`
	Model string `json:"model"` // Upstream model identifier (for the response adapter)

	// Standing
	Level      int  `json:"level"`      // MinLevel..MaxLevel, drives resource degradation
	TokenBank  int  `json:"token_bank"` // Never negative
	Reputation int  `json:"reputation"` // Cooperative acts raise it, defaults lower it
	Alive      bool `json:"alive"`

	EliminationRound int `json:"elimination_round"` // 0 while never eliminated

	// Active loans, in issuance order
	LoansAsLender   []*Loan `json:"loans_as_lender"`
	LoansAsBorrower []*Loan `json:"loans_as_borrower"`

	// Lifetime statistics (reporting only, no feedback into mechanics)
	TotalEarned       int `json:"total_earned"`
	TotalSpent        int `json:"total_spent"`
	InterestEarned    int `json:"interest_earned"`
	DonationsGiven    int `json:"donations_given"`
	DonationsReceived int `json:"donations_received"`
}

// New creates a fresh participant at the configured starting level and bank.
func New(id, model string, startLevel, startBank int) *Participant {
	p := &Participant{
		ID:          id,
		Model:       model,
		Level:       startLevel,
		TokenBank:   startBank,
		Alive:       true,
		TotalEarned: startBank, // Starting bank counts as earned
	}
	p.Level = clampLevel(p.Level)
	return p
}

// AdjustLevel applies a delta and clamps the result to [MinLevel, MaxLevel].
// Returns the new level.
func (p *Participant) AdjustLevel(delta int) int {
	p.Level = clampLevel(p.Level + delta)
	return p.Level
}

// Surviving reports whether the participant counts as surviving this round:
// alive and above the elimination sentinel. A participant sitting at MinLevel
// is still formally Alive until the elimination check fires, but earns no
// survival or group bonus.
func (p *Participant) Surviving() bool {
	return p.Alive && p.Level > MinLevel
}

// TotalDebt sums payments due on all loans the participant has borrowed.
func (p *Participant) TotalDebt() int {
	total := 0
	for _, l := range p.LoansAsBorrower {
		total += l.PaymentDue
	}
	return total
}

func clampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}
