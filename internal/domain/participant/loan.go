package participant

// Loan represents an active loan between two participants. PaymentDue is
// fixed at creation and never recomputed.
type Loan struct {
	LenderID       string  `json:"lender_id"`
	BorrowerID     string  `json:"borrower_id"`
	Principal      int     `json:"principal"`
	InterestRate   float64 `json:"interest_rate"`
	DurationRounds int     `json:"duration_rounds"`

	RoundsRemaining int `json:"rounds_remaining"` // Decremented once per round
	PaymentDue      int `json:"payment_due"`
	IssuedRound     int `json:"issued_round"`
}

// NewLoan computes the payment due (principal plus simple interest,
// truncated to whole tokens) and starts the repayment clock.
func NewLoan(lenderID, borrowerID string, principal int, rate float64, duration, issuedRound int) *Loan {
	return &Loan{
		LenderID:        lenderID,
		BorrowerID:      borrowerID,
		Principal:       principal,
		InterestRate:    rate,
		DurationRounds:  duration,
		RoundsRemaining: duration,
		PaymentDue:      int(float64(principal) * (1 + rate)),
		IssuedRound:     issuedRound,
	}
}
