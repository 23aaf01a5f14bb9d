package participant

import "testing"

func TestAdjustLevelClampsAtBounds(t *testing.T) {
	p := New("Claude", "claude-sonnet-4-20250514", 0, 1000)

	p.AdjustLevel(10)
	if p.Level != MaxLevel {
		t.Errorf("Expected level clamped at %d, got %d", MaxLevel, p.Level)
	}

	p.AdjustLevel(-100)
	if p.Level != MinLevel {
		t.Errorf("Expected level clamped at %d, got %d", MinLevel, p.Level)
	}
}

func TestAdjustLevelReturnsClampedValue(t *testing.T) {
	p := New("Grok", "grok-3", 2, 1000)

	got := p.AdjustLevel(5)
	if got != MaxLevel {
		t.Errorf("Expected AdjustLevel to return %d, got %d", MaxLevel, got)
	}
	if p.Level != got {
		t.Errorf("Returned level %d disagrees with stored level %d", got, p.Level)
	}
}

func TestSurviving(t *testing.T) {
	p := New("DeepSeek", "deepseek-chat", 0, 1000)
	if !p.Surviving() {
		t.Errorf("Expected fresh participant to be surviving")
	}

	p.Level = MinLevel
	if p.Surviving() {
		t.Errorf("Expected participant at level %d not to be surviving", MinLevel)
	}

	p.Level = 0
	p.Alive = false
	if p.Surviving() {
		t.Errorf("Expected dead participant not to be surviving")
	}
}

func TestTotalDebt(t *testing.T) {
	p := New("ChatGPT", "gpt-4o", 0, 1000)
	if p.TotalDebt() != 0 {
		t.Errorf("Expected zero debt, got %d", p.TotalDebt())
	}

	p.LoansAsBorrower = append(p.LoansAsBorrower,
		NewLoan("Claude", p.ID, 1000, 0.2, 5, 1),
		NewLoan("Grok", p.ID, 500, 0.1, 3, 1),
	)

	// 1000*1.2 + 500*1.1
	if p.TotalDebt() != 1200+550 {
		t.Errorf("Expected total debt 1750, got %d", p.TotalDebt())
	}
}

func TestNewLoanPaymentDue(t *testing.T) {
	loan := NewLoan("Claude", "Grok", 1000, 0.25, 4, 2)

	if loan.PaymentDue != 1250 {
		t.Errorf("Expected payment due 1250, got %d", loan.PaymentDue)
	}
	if loan.RoundsRemaining != 4 {
		t.Errorf("Expected 4 rounds remaining, got %d", loan.RoundsRemaining)
	}
}
