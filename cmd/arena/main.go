// Package main is the entry point for the elimination arena.
// It only handles dependency injection and command dispatch.
// NO game logic belongs here.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cafegames/elimination-arena/internal/arena"
	"github.com/cafegames/elimination-arena/internal/domain/degradation"
	"github.com/cafegames/elimination-arena/internal/domain/participant"
	"github.com/cafegames/elimination-arena/internal/economy"
	"github.com/cafegames/elimination-arena/internal/engine"
	"github.com/cafegames/elimination-arena/internal/events"
	"github.com/cafegames/elimination-arena/internal/infra/ai"
	"github.com/cafegames/elimination-arena/internal/infra/cache"
	"github.com/cafegames/elimination-arena/internal/infra/storage"
	"github.com/cafegames/elimination-arena/internal/network"
	"github.com/cafegames/elimination-arena/internal/platform/config"
	"github.com/cafegames/elimination-arena/internal/platform/logger"
	"github.com/cafegames/elimination-arena/internal/platform/metrics"
)

// contestant binds a roster entry to its LLM backend.
type contestant struct {
	id       string
	provider ai.LLMProvider
	model    string
}

// season bundles everything a fully wired game needs.
type season struct {
	controller    *engine.Controller
	standingsRepo *storage.SQLiteStandingsRepository
	db            *sql.DB
	logger        *logger.Logger
}

func buildSeason(cfg *config.Config, appLogger *logger.Logger, extraSinks ...engine.RoundSink) (*season, error) {
	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sqlite: %w", err)
	}

	gameID := uuid.NewString()
	eventLog := events.NewLog(storage.NewSQLiteEventRepository(db, gameID))
	ledger := economy.NewLedger(cfg.Rules(), eventLog)
	table := degradation.Default()

	budgetGate := ai.NewBudgetGate(cfg.BudgetLimitUSD, cfg.BudgetLimitUSD*10)
	contestants := []contestant{
		{"Grok", ai.NewOpenAIProvider("xai", cfg.XAIAPIKey, ai.XAIBaseURL, "grok-3", budgetGate), "grok-3"},
		{"Claude", ai.NewAnthropicProvider(cfg.AnthropicAPIKey, "claude-sonnet-4-20250514", budgetGate), "claude-sonnet-4-20250514"},
		{"DeepSeek", ai.NewOpenAIProvider("deepseek", cfg.DeepSeekAPIKey, ai.DeepSeekBaseURL, "deepseek-chat", budgetGate), "deepseek-chat"},
		{"ChatGPT", ai.NewOpenAIProvider("openai", cfg.OpenAIAPIKey, ai.OpenAIBaseURL, "gpt-4o", budgetGate), "gpt-4o"},
	}

	roster := make([]*participant.Participant, 0, len(contestants))
	responders := make(map[string]arena.Responder, len(contestants))
	collectors := make(map[string]arena.IntentCollector, len(contestants))
	for _, c := range contestants {
		roster = append(roster, participant.New(c.id, c.model, cfg.StartingLevel, cfg.StartingBank))
		responders[c.id] = arena.NewLLMResponder(c.provider, c.model)
		collectors[c.id] = arena.NewLLMIntentCollector(c.provider, c.model)
	}

	// The judge runs on its own Anthropic adapter and its own budget so
	// contestant spending never silences judgment.
	judgeGate := ai.NewBudgetGate(cfg.BudgetLimitUSD, cfg.BudgetLimitUSD*10)
	judge := arena.NewLLMJudge(ai.NewAnthropicProvider(cfg.AnthropicAPIKey, "claude-sonnet-4-20250514", judgeGate), "claude-sonnet-4-20250514")

	roundEngine := engine.NewRoundEngine(table, ledger, judge, responders, collectors, eventLog, appLogger)

	sinks := []engine.RoundSink{storage.NewSQLiteRoundRepository(db)}
	if cfg.RedisURL != "" {
		standingsCache, err := cache.NewStandingsCache(cfg.RedisURL)
		if err != nil {
			appLogger.Warn("standings cache disabled: " + err.Error())
		} else {
			sinks = append(sinks, standingsCache)
		}
	}
	sinks = append(sinks, extraSinks...)

	controller, err := engine.NewController(table, roundEngine, roster, engine.NewChallengeDeck(nil), cfg.MaxRounds, appLogger, sinks...)
	if err != nil {
		db.Close()
		return nil, err
	}
	controller.SetGameID(gameID)

	return &season{
		controller:    controller,
		standingsRepo: storage.NewSQLiteStandingsRepository(db),
		db:            db,
		logger:        appLogger,
	}, nil
}

func (s *season) play(ctx context.Context) error {
	defer s.db.Close()

	if _, err := s.controller.Run(ctx); err != nil {
		return err
	}

	standings := s.controller.FinalStandings()
	if err := s.standingsRepo.Save(ctx, s.controller.GameID(), standings); err != nil {
		s.logger.Error("failed to save final standings: " + err.Error())
	}

	fmt.Println("\nFINAL STANDINGS")
	for _, st := range standings {
		status := "eliminated round " + fmt.Sprint(st.EliminationRound)
		if st.Survived {
			status = "survived"
		}
		fmt.Printf("%2d. %-10s %-22s level %+d  bank %d  reputation %+d\n",
			st.Rank, st.ID, status, st.Level, st.TokenBank, st.Reputation)
	}
	return nil
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Play a full season to completion and print the final standings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			appLogger := logger.NewLogger()

			s, err := buildSeason(cfg, appLogger)
			if err != nil {
				return err
			}
			return s.play(cmd.Context())
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Play a season while serving the spectator feed and metrics over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			appLogger := logger.NewLogger()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			hub := network.NewHub(appLogger)
			go hub.Run(ctx)
			latest := &engine.LatestRecord{}

			s, err := buildSeason(cfg, appLogger, hub, latest)
			if err != nil {
				return err
			}

			mux := http.NewServeMux()
			mux.HandleFunc("/ws", hub.ServeWS)
			mux.HandleFunc("/metrics", metrics.Handler())
			// Standings are served from the last emitted record, never from
			// the roster the round loop is still mutating.
			mux.HandleFunc("/api/standings", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]interface{}{
					"round":     latest.Round(),
					"snapshots": latest.Snapshots(),
				})
			})

			server := &http.Server{Addr: cfg.Addr, Handler: mux}
			go func() {
				appLogger.Info("HTTP API & WS server listening on " + cfg.Addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					appLogger.Error("server failed: " + err.Error())
					cancel()
				}
			}()

			done := make(chan error, 1)
			go func() { done <- s.play(ctx) }()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-done:
				appLogger.Info("season finished, shutting down")
				server.Shutdown(context.Background())
				return err
			case <-quit:
				appLogger.Info("shutting down")
				cancel()
				server.Shutdown(context.Background())
				return <-done
			}
		},
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "arena",
		Short: "LLM elimination arena: creative challenges, a token economy, one survivor",
	}
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
