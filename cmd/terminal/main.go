// Command terminal walks the tap-to-pay happy path against the simulated
// gateway: session setup, a sale, an auth/capture pair, an inquiry and a
// void, printing each gateway response.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/tapterm/tapterm/internal/config"
	"github.com/tapterm/tapterm/internal/domain"
	"github.com/tapterm/tapterm/internal/infrastructure/gateway"
	"github.com/tapterm/tapterm/internal/infrastructure/journal/memory"
	"github.com/tapterm/tapterm/internal/infrastructure/journal/postgres"
	"github.com/tapterm/tapterm/internal/orchestrator"
	"github.com/tapterm/tapterm/internal/ports"
	"github.com/tapterm/tapterm/internal/session"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting terminal",
		"environment", cfg.Gateway.Environment,
		"merchant_id", cfg.Gateway.MerchantID,
		"terminal_id", cfg.Gateway.TerminalID,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var journal ports.TransactionJournal
	if cfg.Database.Enabled() {
		pool, err := postgres.Connect(ctx, &cfg.Database, logger)
		if err != nil {
			logger.Error("failed to connect to journal database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		journal = postgres.NewJournal(pool)
	} else {
		logger.Info("no journal database configured, journaling in memory")
		journal = memory.NewJournal()
	}

	sim := gateway.NewSimulator(logger)
	controller := session.NewController(sim, logger)
	orch := orchestrator.New(cfg.Gateway, sim, journal, logger)

	if err := run(ctx, controller, orch, journal, logger); err != nil {
		logger.Error("terminal run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("terminal run complete")
}

func run(ctx context.Context, controller *session.Controller, orch *orchestrator.Orchestrator, journal ports.TransactionJournal, logger *slog.Logger) error {
	if !controller.ReaderIsSupported() {
		return domain.NewReaderUnsupportedError()
	}

	if err := controller.RequestSessionToken(ctx); err != nil {
		return err
	}

	linked, err := controller.IsAccountLinked(ctx)
	if err != nil {
		return err
	}
	if !linked {
		if err := controller.LinkAccount(ctx); err != nil {
			return err
		}
	}

	if err := controller.InitializeSession(ctx); err != nil {
		return err
	}
	logger.Info("session ready", "state", controller.State())

	sale, err := orch.Charge(ctx, orchestrator.ChargeParams{
		Amount:                decimal.RequireFromString("5.00"),
		Type:                  domain.TransactionSale,
		MerchantOrderID:       "oid123",
		MerchantTransactionID: "tid987",
	})
	if err != nil {
		return err
	}
	printResponse("Sale", sale)

	auth, err := orch.Charge(ctx, orchestrator.ChargeParams{
		Amount: decimal.RequireFromString("10.00"),
		Type:   domain.TransactionAuth,
	})
	if err != nil {
		return err
	}
	printResponse("Auth", auth)

	// Capture chains to the auth via the stored auth transaction id.
	capture, err := orch.Charge(ctx, orchestrator.ChargeParams{
		Amount: decimal.RequireFromString("10.00"),
		Type:   domain.TransactionCapture,
	})
	if err != nil {
		return err
	}
	printResponse("Capture", capture)

	records, err := orch.Inquire(ctx, orchestrator.InquiryParams{
		ReferenceTransactionID: sale.TransactionID(),
	})
	if err != nil {
		return err
	}
	printResponse("Inquiry", records)

	void, err := orch.Void(ctx, orchestrator.CancelParams{
		Amount:                 decimal.RequireFromString("5.00"),
		ReferenceTransactionID: sale.TransactionID(),
	})
	if err != nil {
		return err
	}
	printResponse("Void", void)

	entries, err := journal.ListRecent(ctx, 10)
	if err != nil {
		return err
	}
	for _, e := range entries {
		logger.Info("journal entry",
			"type", e.TransactionType,
			"transaction_id", e.GatewayTransactionID,
			"amount_cents", e.AmountCents,
			"state", e.State,
		)
	}

	return nil
}

func printResponse(title string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		slog.Error("failed to render response", "title", title, "error", err)
		return
	}
	fmt.Printf("--- %s ---\n%s\n", title, data)
}
