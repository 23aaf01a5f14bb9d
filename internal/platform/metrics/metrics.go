// Package metrics provides observability for arena runs.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Round metrics
	RoundCount      int64
	RoundLatencySum int64 // nanoseconds
	RoundLatencyMax int64
	LastRoundTime   time.Time

	// Judgment metrics
	JudgmentsRendered int64
	JudgmentFailures  int64

	// Economy metrics
	EventsWritten    int64
	EventWriteErrors int64

	// LLM metrics
	LLMRequests   int64
	LLMTokensUsed int64
	LLMCostUSD    float64
	LLMLatencySum int64

	// Spectator feed metrics
	WSConnectionsActive int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordRound records a completed round.
func (c *Collector) RecordRound(latency time.Duration) {
	atomic.AddInt64(&c.RoundCount, 1)
	atomic.AddInt64(&c.RoundLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.RoundLatencyMax) {
		atomic.StoreInt64(&c.RoundLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastRoundTime = time.Now()
	c.mu.Unlock()
}

// RecordJudgment records a judgment outcome.
func (c *Collector) RecordJudgment(failed bool) {
	if failed {
		atomic.AddInt64(&c.JudgmentFailures, 1)
		return
	}
	atomic.AddInt64(&c.JudgmentsRendered, 1)
}

// RecordEventWrite records an event write to the database.
func (c *Collector) RecordEventWrite(err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// RecordLLM records an LLM API call.
func (c *Collector) RecordLLM(tokens int, cost float64, latency time.Duration) {
	atomic.AddInt64(&c.LLMRequests, 1)
	atomic.AddInt64(&c.LLMTokensUsed, int64(tokens))
	atomic.AddInt64(&c.LLMLatencySum, int64(latency))

	c.mu.Lock()
	c.LLMCostUSD += cost
	c.mu.Unlock()
}

// RecordWSConnection records spectator connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records a broadcast message.
func (c *Collector) RecordWSMessage() {
	atomic.AddInt64(&c.WSMessagesOut, 1)
}

// RecordWSError records a spectator feed error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	roundCount := atomic.LoadInt64(&c.RoundCount)
	llmRequests := atomic.LoadInt64(&c.LLMRequests)

	var roundAvg, llmAvg float64
	if roundCount > 0 {
		roundAvg = float64(atomic.LoadInt64(&c.RoundLatencySum)) / float64(roundCount) / 1e9 // seconds
	}
	if llmRequests > 0 {
		llmAvg = float64(atomic.LoadInt64(&c.LLMLatencySum)) / float64(llmRequests) / 1e9
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"rounds": map[string]interface{}{
			"count":           roundCount,
			"avg_latency_sec": roundAvg,
			"max_latency_sec": float64(atomic.LoadInt64(&c.RoundLatencyMax)) / 1e9,
			"last_round":      c.LastRoundTime.Format(time.RFC3339),
		},

		"judgments": map[string]interface{}{
			"rendered": atomic.LoadInt64(&c.JudgmentsRendered),
			"failures": atomic.LoadInt64(&c.JudgmentFailures),
		},

		"events": map[string]interface{}{
			"written": atomic.LoadInt64(&c.EventsWritten),
			"errors":  atomic.LoadInt64(&c.EventWriteErrors),
		},

		"llm": map[string]interface{}{
			"requests":        llmRequests,
			"tokens_used":     atomic.LoadInt64(&c.LLMTokensUsed),
			"cost_usd":        c.LLMCostUSD,
			"avg_latency_sec": llmAvg,
		},

		"spectators": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}
