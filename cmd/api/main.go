package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/apexpay/payouter/internal/config"
	"github.com/apexpay/payouter/internal/database"
	payouterHttp "github.com/apexpay/payouter/internal/http"
	invoiceHandler "github.com/apexpay/payouter/internal/http/invoice"
	webhookHandler "github.com/apexpay/payouter/internal/http/webhook"
	"github.com/apexpay/payouter/internal/invoice"
	"github.com/apexpay/payouter/internal/invoice/filestore"
	invoiceStore "github.com/apexpay/payouter/internal/invoice/store"
	"github.com/apexpay/payouter/internal/payouter"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	repo, err := newRepository(cfg)
	if err != nil {
		slog.Error("failed to set up invoice store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}

	if cfg.Payouter.TestMode {
		slog.Info("running in test mode, processor calls are mocked")
	}

	client := payouter.New(payouter.Config{
		BaseURL:       cfg.Payouter.BaseURL,
		MerchantID:    cfg.Payouter.MerchantID,
		PaymentAPIKey: cfg.Payouter.PaymentAPIKey,
		PayoutAPIKey:  cfg.Payouter.PayoutAPIKey,
		CallbackURL:   cfg.Payouter.CallbackURL,
		SuccessURL:    cfg.Payouter.SuccessURL,
		ErrorURL:      cfg.Payouter.ErrorURL,
		PayoutCard:    cfg.Payouter.PayoutCard,
		TestMode:      cfg.Payouter.TestMode,
		Timeout:       cfg.Payouter.Timeout,
	})

	invoiceService := invoice.NewService(repo, client)

	router := payouterHttp.New(
		invoiceHandler.NewHandler(invoiceService),
		webhookHandler.NewHandler(invoiceService),
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func newRepository(cfg *config.Config) (invoice.Repository, error) {
	switch cfg.Store.Driver {
	case "postgres":
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			return nil, err
		}

		return invoiceStore.New(db), nil
	case "file":
		return filestore.New(cfg.Store.Path), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
