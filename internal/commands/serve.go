package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/vigia-dev/vigia/internal/advisor"
	"github.com/vigia-dev/vigia/internal/config"
	"github.com/vigia-dev/vigia/internal/logger"
	"github.com/vigia-dev/vigia/internal/model"
	"github.com/vigia-dev/vigia/internal/schedule"
	"github.com/vigia-dev/vigia/internal/server"
	"github.com/vigia-dev/vigia/internal/store"
)

func newServeCommand() *cobra.Command {
	var configPath string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the vigia API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, addr)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", defaultConfigFile, "path to the configuration file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func runServe(configPath, addr string) error {
	// GEMINI_API_KEY and friends may live in a local .env.
	_ = godotenv.Load()

	log := logger.New()

	cfg, err := config.Load(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading config: %w", err)
		}
		log.Info().Str("path", configPath).Msg("Config not found, using defaults")
		cfg = config.Default()
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	owner := model.Member{
		ID:         "user1",
		Name:       "Você",
		Email:      "voce@email.com",
		Permission: model.PermissionAdmin,
		IsOnline:   true,
	}
	st := store.New(cfg, log,
		store.WithCategories(model.DefaultCategories()),
		store.WithMembers([]model.Member{owner}, owner.ID),
		store.WithPlan(model.PlanPremium),
	)

	var classifier *advisor.Classifier
	if os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != "" {
		classifier = advisor.NewClassifier(cfg.Advisor.Model, log)
	} else {
		log.Warn().Msg("No Gemini API key configured, assistant disabled")
	}

	// Expand recurring-payment templates into bills once a day.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@daily", func() {
		bills, err := schedule.UpcomingBills(st.ScheduledPayments(), st.Bills(), time.Now(), 30*24*time.Hour)
		if err != nil {
			log.Error().Err(err).Msg("Failed to plan upcoming bills")
			return
		}
		for _, b := range bills {
			if _, err := st.Dispatch(store.AddBill{Name: b.Name, Amount: b.Amount, DueDate: b.DueDate, CategoryID: b.CategoryID}); err != nil {
				log.Error().Err(err).Str("bill", b.Name).Msg("Failed to register planned bill")
			}
		}
		if len(bills) > 0 {
			log.Info().Int("count", len(bills)).Msg("Registered upcoming bills")
		}
	}); err != nil {
		return fmt.Errorf("registering bill scheduler: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.New(st, classifier, log).Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}
