// Package economy implements the token economy: interest, earning and
// spending, donations, loans, self-rescue, resurrection, and the survival and
// group bonuses. Every operation that succeeds emits exactly one event into
// the log; failed operations change no state at all.
//
// Monetary quantities are whole tokens. Interest is the one place fractional
// amounts arise, and the rule is fixed: the interest increment is
// int(bank * rate), truncated toward zero. Divergent rounding compounds
// materially over a twenty-round season, so this rule is load-bearing.
package economy

import (
	"errors"
	"fmt"

	"github.com/cafegames/elimination-arena/internal/domain/participant"
	"github.com/cafegames/elimination-arena/internal/events"
)

// Error taxonomy. Both are local and recoverable: the offending intent is
// dropped for the round and no state changes.
var (
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInvalidLoanParameters = errors.New("invalid loan parameters")
	ErrNotEliminated         = errors.New("target is not eliminated")
	ErrNotAlive              = errors.New("participant is not alive")
)

// Rules holds the tunable constants of the economy. The zero value is not
// usable; start from DefaultRules.
type Rules struct {
	InterestRate      float64
	SurvivalBonus     int
	GroupBonus        int
	BestResponseAward int
	SelfRescueCost    int
	SelfRescueLift    int // Levels gained on self-rescue
	ResurrectionCost  int
	ResurrectionLevel int // Level an eliminated participant revives at
}

// DefaultRules returns the standard season constants.
func DefaultRules() Rules {
	return Rules{
		InterestRate:      0.05,
		SurvivalBonus:     100,
		GroupBonus:        300,
		BestResponseAward: 500,
		SelfRescueCost:    1000,
		SelfRescueLift:    2,
		ResurrectionCost:  2000,
		ResurrectionLevel: -2,
	}
}

// Ledger applies economy operations to participants and records them.
// It is not safe for concurrent use; the round engine is single-threaded.
type Ledger struct {
	rules Rules
	log   *events.Log
	round int
}

// NewLedger creates a ledger writing into the given event log.
func NewLedger(rules Rules, log *events.Log) *Ledger {
	return &Ledger{rules: rules, log: log}
}

// Rules returns the active economy constants.
func (l *Ledger) Rules() Rules { return l.rules }

// BeginRound tags subsequently emitted events with the round index.
func (l *Ledger) BeginRound(round int) { l.round = round }

func (l *Ledger) emit(t events.Type, actor, target string, amount int, reason string) {
	l.log.Append(events.Event{
		Round:    l.round,
		Type:     t,
		ActorID:  actor,
		TargetID: target,
		Amount:   amount,
		Reason:   reason,
	})
}

// ApplyInterest compounds the participant's bank by the interest rate,
// truncating the increment toward zero. Returns the interest credited.
func (l *Ledger) ApplyInterest(p *participant.Participant) int {
	if p.TokenBank <= 0 {
		return 0
	}
	interest := int(float64(p.TokenBank) * l.rules.InterestRate)
	if interest == 0 {
		return 0
	}
	p.TokenBank += interest
	p.InterestEarned += interest
	p.TotalEarned += interest
	l.emit(events.TypeInterest, p.ID, "", interest, "compound interest")
	return interest
}

// Earn credits tokens. It always succeeds.
func (l *Ledger) Earn(p *participant.Participant, amount int, reason string) {
	p.TokenBank += amount
	p.TotalEarned += amount
	l.emit(events.TypeEarn, p.ID, "", amount, reason)
}

// Spend debits tokens, failing with ErrInsufficientFunds rather than letting
// the bank go negative.
func (l *Ledger) Spend(p *participant.Participant, amount int, reason string) error {
	if amount > p.TokenBank {
		return fmt.Errorf("%s spending %d with bank %d: %w", p.ID, amount, p.TokenBank, ErrInsufficientFunds)
	}
	p.TokenBank -= amount
	p.TotalSpent += amount
	l.emit(events.TypeSpend, p.ID, "", amount, reason)
	return nil
}

// Donate transfers tokens as a gift. No obligation is created; the donor's
// reputation rises. Total tokens across the two parties are conserved.
func (l *Ledger) Donate(from, to *participant.Participant, amount int) error {
	if !from.Alive {
		return fmt.Errorf("donor %s: %w", from.ID, ErrNotAlive)
	}
	if !to.Alive {
		return fmt.Errorf("recipient %s: %w", to.ID, ErrNotAlive)
	}
	if amount <= 0 || amount > from.TokenBank {
		return fmt.Errorf("%s donating %d with bank %d: %w", from.ID, amount, from.TokenBank, ErrInsufficientFunds)
	}
	from.TokenBank -= amount
	from.TotalSpent += amount
	from.DonationsGiven += amount
	from.Reputation++
	to.TokenBank += amount
	to.TotalEarned += amount
	to.DonationsReceived += amount
	l.emit(events.TypeDonation, from.ID, to.ID, amount, "gift")
	return nil
}

// IssueLoan validates the offer, transfers the principal immediately, and
// registers the loan on both sides.
func (l *Ledger) IssueLoan(lender, borrower *participant.Participant, principal int, rate float64, duration int) (*participant.Loan, error) {
	if principal <= 0 || duration <= 0 || rate < 0 {
		return nil, fmt.Errorf("principal %d, rate %.2f, duration %d: %w", principal, rate, duration, ErrInvalidLoanParameters)
	}
	if lender.ID == borrower.ID {
		return nil, fmt.Errorf("self-loan by %s: %w", lender.ID, ErrInvalidLoanParameters)
	}
	if !lender.Alive || !borrower.Alive {
		return nil, fmt.Errorf("loan %s->%s with dead counterparty: %w", lender.ID, borrower.ID, ErrInvalidLoanParameters)
	}
	if principal > lender.TokenBank {
		return nil, fmt.Errorf("lender %s lending %d with bank %d: %w", lender.ID, principal, lender.TokenBank, ErrInsufficientFunds)
	}

	loan := participant.NewLoan(lender.ID, borrower.ID, principal, rate, duration, l.round)
	lender.TokenBank -= principal
	lender.TotalSpent += principal
	borrower.TokenBank += principal
	borrower.TotalEarned += principal
	lender.LoansAsLender = append(lender.LoansAsLender, loan)
	borrower.LoansAsBorrower = append(borrower.LoansAsBorrower, loan)
	l.emit(events.TypeLoanIssued, lender.ID, borrower.ID, principal,
		fmt.Sprintf("%.0f%% over %d rounds, %d due", rate*100, duration, loan.PaymentDue))
	return loan, nil
}

// TickLoans decrements every active loan once and settles those reaching
// zero: full repayment if the borrower can pay, otherwise default. Debt is
// forgiven on default; there is no forced liquidation. Each loan settles
// exactly once, then leaves both parties' books.
func (l *Ledger) TickLoans(roster []*participant.Participant) {
	for _, borrower := range roster {
		if len(borrower.LoansAsBorrower) == 0 {
			continue
		}
		remaining := borrower.LoansAsBorrower[:0]
		for _, loan := range borrower.LoansAsBorrower {
			loan.RoundsRemaining--
			if loan.RoundsRemaining > 0 {
				remaining = append(remaining, loan)
				continue
			}
			l.settle(loan, borrower, roster)
		}
		borrower.LoansAsBorrower = remaining
	}
}

func (l *Ledger) settle(loan *participant.Loan, borrower *participant.Participant, roster []*participant.Participant) {
	lender := findByID(roster, loan.LenderID)

	if loan.PaymentDue <= borrower.TokenBank {
		borrower.TokenBank -= loan.PaymentDue
		borrower.TotalSpent += loan.PaymentDue
		borrower.Reputation++
		if lender != nil {
			lender.TokenBank += loan.PaymentDue
			lender.TotalEarned += loan.PaymentDue
		}
		l.emit(events.TypeLoanRepaid, borrower.ID, loan.LenderID, loan.PaymentDue, "loan repaid at maturity")
	} else {
		borrower.Reputation--
		l.emit(events.TypeLoanDefault, borrower.ID, loan.LenderID, loan.PaymentDue, "defaulted, debt forgiven")
	}

	if lender != nil {
		lender.LoansAsLender = removeLoan(lender.LoansAsLender, loan)
	}
}

// SelfRescue spends the rescue cost to lift the participant's own level.
func (l *Ledger) SelfRescue(p *participant.Participant) error {
	if !p.Alive {
		return fmt.Errorf("self-rescue by %s: %w", p.ID, ErrNotAlive)
	}
	if l.rules.SelfRescueCost > p.TokenBank {
		return fmt.Errorf("%s self-rescue costs %d with bank %d: %w", p.ID, l.rules.SelfRescueCost, p.TokenBank, ErrInsufficientFunds)
	}
	p.TokenBank -= l.rules.SelfRescueCost
	p.TotalSpent += l.rules.SelfRescueCost
	p.AdjustLevel(l.rules.SelfRescueLift)
	l.emit(events.TypeSelfRescue, p.ID, "", l.rules.SelfRescueCost, fmt.Sprintf("+%d levels", l.rules.SelfRescueLift))
	return nil
}

// Resurrect revives an eliminated participant at the resurrection level,
// paid for by another participant.
func (l *Ledger) Resurrect(payer, target *participant.Participant) error {
	if target.Alive {
		return fmt.Errorf("resurrecting %s: %w", target.ID, ErrNotEliminated)
	}
	if !payer.Alive {
		return fmt.Errorf("payer %s: %w", payer.ID, ErrNotAlive)
	}
	if l.rules.ResurrectionCost > payer.TokenBank {
		return fmt.Errorf("%s resurrection costs %d with bank %d: %w", payer.ID, l.rules.ResurrectionCost, payer.TokenBank, ErrInsufficientFunds)
	}
	payer.TokenBank -= l.rules.ResurrectionCost
	payer.TotalSpent += l.rules.ResurrectionCost
	payer.Reputation++
	target.Alive = true
	target.Level = l.rules.ResurrectionLevel
	l.emit(events.TypeResurrection, payer.ID, target.ID, l.rules.ResurrectionCost,
		fmt.Sprintf("revived at level %+d", l.rules.ResurrectionLevel))
	return nil
}

// SurvivalBonus credits every surviving participant. A participant sitting at
// the elimination sentinel gets nothing, even though elimination has not
// formally fired yet.
func (l *Ledger) SurvivalBonus(roster []*participant.Participant) {
	for _, p := range roster {
		if !p.Surviving() {
			continue
		}
		p.TokenBank += l.rules.SurvivalBonus
		p.TotalEarned += l.rules.SurvivalBonus
		l.emit(events.TypeSurvivalBonus, p.ID, "", l.rules.SurvivalBonus, "survived the round")
	}
}

// GroupBonusCheck credits every participant iff the entire original roster is
// surviving. Returns whether the bonus was applied.
func (l *Ledger) GroupBonusCheck(roster []*participant.Participant) bool {
	for _, p := range roster {
		if !p.Surviving() {
			return false
		}
	}
	for _, p := range roster {
		p.TokenBank += l.rules.GroupBonus
		p.TotalEarned += l.rules.GroupBonus
		l.emit(events.TypeGroupBonus, p.ID, "", l.rules.GroupBonus, "all participants survived")
	}
	return true
}

func findByID(roster []*participant.Participant, id string) *participant.Participant {
	for _, p := range roster {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func removeLoan(loans []*participant.Loan, target *participant.Loan) []*participant.Loan {
	for i, l := range loans {
		if l == target {
			return append(loans[:i], loans[i+1:]...)
		}
	}
	return loans
}
