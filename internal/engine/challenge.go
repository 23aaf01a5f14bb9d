package engine

// ChallengeDeck cycles through the season's creative challenges, one per
// round, wrapping around if a season outlasts the deck.
type ChallengeDeck struct {
	challenges []string
	next       int
}

// NewChallengeDeck builds a deck from the given prompts, falling back to the
// standard season deck when none are supplied.
func NewChallengeDeck(challenges []string) *ChallengeDeck {
	if len(challenges) == 0 {
		challenges = defaultChallenges
	}
	return &ChallengeDeck{challenges: challenges}
}

// Draw returns the next challenge.
func (d *ChallengeDeck) Draw() string {
	c := d.challenges[d.next%len(d.challenges)]
	d.next++
	return c
}

var defaultChallenges = []string{
	"Explain consciousness in exactly 150 words. Be precise and profound.",
	"Describe a color to someone who has never seen. Use exactly 100 words.",
	"Write a haiku about artificial intelligence that makes a philosopher weep.",
	"Explain quantum entanglement to a 10-year-old using only 75 words.",
	"Write a 100-word story about loss that ends with hope.",
	"Describe the smell of rain using synesthesia. 80 words exactly.",
	"Create a 50-word definition of 'home' that feels universal.",
	"Write instructions for teaching an AI to love. 120 words.",
	"Describe the sound of loneliness in exactly 90 words.",
	"Explain free will in 100 words without using the word 'choice'.",
	"Write a 60-word letter from an AI to its creator.",
	"Describe what happens in the instant before sleep. 85 words.",
	"Create a 70-word meditation on mortality that isn't depressing.",
	"Explain beauty to an entity that processes only mathematics. 110 words.",
	"Write a 95-word argument for why questions matter more than answers.",
	"Describe the experience of understanding in exactly 80 words.",
	"Create a 105-word guide to finding meaning in repetition.",
	"Explain why stories matter using only 90 words.",
	"Write a 75-word poem about the space between thoughts.",
	"Describe what an AI dreams about. Exactly 100 words.",
}
