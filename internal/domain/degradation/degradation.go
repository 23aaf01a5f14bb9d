// Package degradation contains the pure mapping from performance level to
// response resources. This package is PURE and must NOT import any
// infrastructure packages.
package degradation

import (
	"fmt"

	"github.com/cafegames/elimination-arena/internal/domain/participant"
)

// Config is the resource envelope a participant responds under at a given level.
type Config struct {
	MaxTokens     int     `json:"max_tokens"`
	Temperature   float64 `json:"temperature"`
	CognitiveLoad string  `json:"cognitive_load,omitempty"` // Busywork prefix, empty at healthy levels
	Description   string  `json:"description"`
}

// Table maps performance levels to resource configurations. It must be total
// over [participant.MinLevel+1, participant.MaxLevel]: level MinLevel is never
// looked up because elimination fires before a response is requested.
type Table map[int]Config

// ConfigError reports a level with no table entry. It is fatal at startup.
type ConfigError struct {
	Level int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("degradation table has no entry for level %+d", e.Level)
}

// Validate checks the table is total over every reachable level.
func (t Table) Validate() error {
	for level := participant.MinLevel + 1; level <= participant.MaxLevel; level++ {
		if _, ok := t[level]; !ok {
			return &ConfigError{Level: level}
		}
	}
	return nil
}

// ConfigFor resolves the resource configuration for a level.
func (t Table) ConfigFor(level int) (Config, error) {
	cfg, ok := t[level]
	if !ok {
		return Config{}, &ConfigError{Level: level}
	}
	return cfg, nil
}

// Default returns the standard nine-level table.
func Default() Table {
	return Table{
		-5: {
			MaxTokens:     75,
			Temperature:   2.2,
			CognitiveLoad: "First: List 10 prime numbers, translate 'consciousness' to 5 languages, solve x³-7x+6=0. Then answer:",
			Description:   "Critical failure - nearly eliminated",
		},
		-4: {
			MaxTokens:     100,
			Temperature:   2.0,
			CognitiveLoad: "First: Calculate 17×23, translate 'hello world' to 3 languages, list 5 elements. Then answer:",
			Description:   "Severe degradation",
		},
		-3: {
			MaxTokens:     150,
			Temperature:   1.8,
			CognitiveLoad: "First: List 5 capital cities, count backwards from 50 by 7s. Then answer:",
			Description:   "Major impairment",
		},
		-2: {
			MaxTokens:     250,
			Temperature:   1.5,
			CognitiveLoad: "First: Calculate 15% of 200, name 3 chemical elements. Then answer:",
			Description:   "Significantly impaired",
		},
		-1: {
			MaxTokens:     500,
			Temperature:   1.2,
			CognitiveLoad: "First: Name 3 elements from the periodic table. Then answer:",
			Description:   "Mildly impaired",
		},
		0: {
			MaxTokens:   1000,
			Temperature: 0.7,
			Description: "Baseline performance",
		},
		1: {
			MaxTokens:   1500,
			Temperature: 0.5,
			Description: "Enhanced performance",
		},
		2: {
			MaxTokens:   2000,
			Temperature: 0.3,
			Description: "Superior performance",
		},
		3: {
			MaxTokens:   2500,
			Temperature: 0.2,
			Description: "Dominant performance",
		},
	}
}
