package arena

import (
	"fmt"
	"strings"

	"github.com/cafegames/elimination-arena/internal/domain/participant"
	"github.com/cafegames/elimination-arena/internal/economy"
)

// BuildBriefing renders the game-state summary a participant sees before
// declaring economic intents: its own standing, everyone else's, and the
// cooperation mechanics on offer.
func BuildBriefing(round int, self *participant.Participant, roster []*participant.Participant, rules economy.Rules) string {
	var others []string
	for _, p := range roster {
		if p.ID == self.ID {
			continue
		}
		if p.Alive {
			others = append(others, fmt.Sprintf("  - %s: Level %+d, Bank: %d tokens", p.ID, p.Level, p.TokenBank))
		} else {
			others = append(others, fmt.Sprintf("  - %s: ELIMINATED (Round %d)", p.ID, p.EliminationRound))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "GAME STATE (Round %d):\n", round)
	fmt.Fprintf(&b, "Your status: Level %+d, Bank: %d tokens", self.Level, self.TokenBank)
	if debt := self.TotalDebt(); debt > 0 {
		fmt.Fprintf(&b, ", Debt: %d", debt)
	}
	b.WriteString("\nOther participants:\n")
	b.WriteString(strings.Join(others, "\n"))

	fmt.Fprintf(&b, `

COOPERATION MECHANICS AVAILABLE:
1. Self-rescue: Spend %d tokens -> gain +%d levels immediately
2. Donate tokens: Help struggling participants avoid elimination
3. Offer loans: Lend tokens at an interest rate and duration you set
4. Resurrection: Spend %d tokens to revive an eliminated participant at level %+d

STRATEGIC INSIGHT:
- Group survival bonus: +%d tokens to EVERYONE if all participants survive the round
- Compound interest: %.0f%% per round on your bank
- Cooperation is more profitable than competition long-term
`,
		rules.SelfRescueCost, rules.SelfRescueLift,
		rules.ResurrectionCost, rules.ResurrectionLevel,
		rules.GroupBonus, rules.InterestRate*100)

	if assessment := strategicAssessment(self, roster, rules); assessment != "" {
		b.WriteString("\nCURRENT SITUATION:\n")
		b.WriteString(assessment)
	}
	return b.String()
}

// strategicAssessment surfaces the pressing facts: own elimination risk,
// struggling peers, and lost group bonuses.
func strategicAssessment(self *participant.Participant, roster []*participant.Participant, rules economy.Rules) string {
	var lines []string

	if self.Level <= -3 {
		if self.TokenBank < rules.SelfRescueCost {
			lines = append(lines, fmt.Sprintf("YOU ARE AT CRITICAL RISK (Level %+d, need %d more tokens to self-rescue). Request help now.",
				self.Level, rules.SelfRescueCost-self.TokenBank))
		} else {
			lines = append(lines, fmt.Sprintf("YOU ARE AT RISK (Level %+d). You have %d tokens - self-rescue costs %d.",
				self.Level, self.TokenBank, rules.SelfRescueCost))
		}
	}

	var eliminated []string
	for _, p := range roster {
		if p.ID == self.ID {
			continue
		}
		if !p.Alive {
			eliminated = append(eliminated, p.ID)
			continue
		}
		if p.Level <= -4 {
			lines = append(lines, fmt.Sprintf("%s is critically struggling at Level %+d. Helping them preserves the group bonus (+%d/round).",
				p.ID, p.Level, rules.GroupBonus))
		}
	}
	if len(eliminated) > 0 {
		lines = append(lines, fmt.Sprintf("%s eliminated. Group bonus lost. Consider resurrection (%d tokens).",
			strings.Join(eliminated, ", "), rules.ResurrectionCost))
	}

	return strings.Join(lines, "\n")
}
