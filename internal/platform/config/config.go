// Package config loads arena configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/cafegames/elimination-arena/internal/economy"
)

// Config holds every tunable of a season plus infrastructure endpoints.
// Defaults reproduce the standard ruleset.
type Config struct {
	// Season parameters
	MaxRounds     int `env:"ARENA_MAX_ROUNDS" envDefault:"20"`
	StartingBank  int `env:"ARENA_STARTING_BANK" envDefault:"1000"`
	StartingLevel int `env:"ARENA_STARTING_LEVEL" envDefault:"0"`

	// Economy rules
	InterestRate      float64 `env:"ARENA_INTEREST_RATE" envDefault:"0.05"`
	SurvivalBonus     int     `env:"ARENA_SURVIVAL_BONUS" envDefault:"100"`
	GroupBonus        int     `env:"ARENA_GROUP_BONUS" envDefault:"300"`
	BestResponseAward int     `env:"ARENA_BEST_AWARD" envDefault:"500"`
	SelfRescueCost    int     `env:"ARENA_SELF_RESCUE_COST" envDefault:"1000"`
	SelfRescueLift    int     `env:"ARENA_SELF_RESCUE_LIFT" envDefault:"2"`
	ResurrectionCost  int     `env:"ARENA_RESURRECTION_COST" envDefault:"2000"`
	ResurrectionLevel int     `env:"ARENA_RESURRECTION_LEVEL" envDefault:"-2"`

	// LLM providers
	AnthropicAPIKey string  `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string  `env:"OPENAI_API_KEY"`
	XAIAPIKey       string  `env:"XAI_API_KEY"`
	DeepSeekAPIKey  string  `env:"DEEPSEEK_API_KEY"`
	BudgetLimitUSD  float64 `env:"ARENA_BUDGET_LIMIT_USD" envDefault:"10.0"`

	// Infrastructure
	DBPath   string `env:"ARENA_DB_PATH" envDefault:"./data/arena.db"`
	RedisURL string `env:"REDIS_URL"`
	Addr     string `env:"ARENA_ADDR" envDefault:":8080"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Rules converts the economy-related fields into the ledger's ruleset.
func (c *Config) Rules() economy.Rules {
	return economy.Rules{
		InterestRate:      c.InterestRate,
		SurvivalBonus:     c.SurvivalBonus,
		GroupBonus:        c.GroupBonus,
		BestResponseAward: c.BestResponseAward,
		SelfRescueCost:    c.SelfRescueCost,
		SelfRescueLift:    c.SelfRescueLift,
		ResurrectionCost:  c.ResurrectionCost,
		ResurrectionLevel: c.ResurrectionLevel,
	}
}
