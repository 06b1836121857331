package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	activityStore "github.com/MrJamesThe3rd/upkeep/internal/activity/store"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/booking"
	bookingStore "github.com/MrJamesThe3rd/upkeep/internal/booking/store"
	"github.com/MrJamesThe3rd/upkeep/internal/client"
	clientStore "github.com/MrJamesThe3rd/upkeep/internal/client/store"
	"github.com/MrJamesThe3rd/upkeep/internal/config"
	"github.com/MrJamesThe3rd/upkeep/internal/contact"
	contactStore "github.com/MrJamesThe3rd/upkeep/internal/contact/store"
	"github.com/MrJamesThe3rd/upkeep/internal/dashboard"
	dashboardStore "github.com/MrJamesThe3rd/upkeep/internal/dashboard/store"
	"github.com/MrJamesThe3rd/upkeep/internal/database"
	"github.com/MrJamesThe3rd/upkeep/internal/employee"
	employeeStore "github.com/MrJamesThe3rd/upkeep/internal/employee/store"
	"github.com/MrJamesThe3rd/upkeep/internal/estimate"
	estimateStore "github.com/MrJamesThe3rd/upkeep/internal/estimate/store"
	"github.com/MrJamesThe3rd/upkeep/internal/export"
	upkeepHttp "github.com/MrJamesThe3rd/upkeep/internal/http"
	activityHandler "github.com/MrJamesThe3rd/upkeep/internal/http/activity"
	bookingHandler "github.com/MrJamesThe3rd/upkeep/internal/http/booking"
	clientHandler "github.com/MrJamesThe3rd/upkeep/internal/http/client"
	dashboardHandler "github.com/MrJamesThe3rd/upkeep/internal/http/dashboard"
	employeeHandler "github.com/MrJamesThe3rd/upkeep/internal/http/employee"
	estimateHandler "github.com/MrJamesThe3rd/upkeep/internal/http/estimate"
	exportHandler "github.com/MrJamesThe3rd/upkeep/internal/http/export"
	invoiceHandler "github.com/MrJamesThe3rd/upkeep/internal/http/invoice"
	leadHandler "github.com/MrJamesThe3rd/upkeep/internal/http/lead"
	payrollHandler "github.com/MrJamesThe3rd/upkeep/internal/http/payroll"
	workorderHandler "github.com/MrJamesThe3rd/upkeep/internal/http/workorder"
	"github.com/MrJamesThe3rd/upkeep/internal/importer"
	"github.com/MrJamesThe3rd/upkeep/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/upkeep/internal/invoice/store"
	"github.com/MrJamesThe3rd/upkeep/internal/lead"
	leadStore "github.com/MrJamesThe3rd/upkeep/internal/lead/store"
	"github.com/MrJamesThe3rd/upkeep/internal/logger"
	"github.com/MrJamesThe3rd/upkeep/internal/payroll"
	payrollStore "github.com/MrJamesThe3rd/upkeep/internal/payroll/store"
	"github.com/MrJamesThe3rd/upkeep/internal/processor"
	"github.com/MrJamesThe3rd/upkeep/internal/receipt"
	"github.com/MrJamesThe3rd/upkeep/internal/workorder"
	workorderStore "github.com/MrJamesThe3rd/upkeep/internal/workorder/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString(), database.Options{
		MaxOpenConns: cfg.DB.MaxOpenConns,
		MaxIdleConns: cfg.DB.MaxIdleConns,
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	invoiceOpts, err := paymentOptions(ctx, cfg)
	if err != nil {
		return err
	}

	var (
		leadService      = lead.NewService(leadStore.New(db))
		bookingService   = booking.NewService(bookingStore.New(db))
		clientService    = client.NewService(clientStore.New(db))
		contactService   = contact.NewService(contactStore.New(db))
		employeeService  = employee.NewService(employeeStore.New(db))
		estimateService  = estimate.NewService(estimateStore.New(db))
		workorderService = workorder.NewService(workorderStore.New(db))
		invoiceService   = invoice.NewService(invoiceStore.New(db), invoiceOpts...)
		payrollService   = payroll.NewService(payrollStore.New(db))
		dashboardService = dashboard.NewService(dashboardStore.New(db))
		activityService  = activity.NewService(activityStore.New(db))
		importService    = importer.NewService(leadService)
		exportService    = export.NewService(leadService, estimateService, workorderService, invoiceService)
	)

	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if cfg.Auth.Secret == "" {
		slog.Warn("AUTH_JWT_SECRET is empty; only anonymous booking submissions will be accepted")
	}

	router := upkeepHttp.New(upkeepHttp.Handlers{
		Leads:      leadHandler.NewHandler(leadService, importService),
		Bookings:   bookingHandler.NewHandler(bookingService),
		Clients:    clientHandler.NewHandler(clientService, contactService),
		Employees:  employeeHandler.NewHandler(employeeService),
		Estimates:  estimateHandler.NewHandler(estimateService),
		WorkOrders: workorderHandler.NewHandler(workorderService, invoiceService),
		Invoices:   invoiceHandler.NewHandler(invoiceService),
		Payroll:    payrollHandler.NewHandler(payrollService),
		Dashboard:  dashboardHandler.NewHandler(dashboardService),
		Activity:   activityHandler.NewHandler(activityService),
		Exports:    exportHandler.NewHandler(exportService),
	}, tokens, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "port", srv.Addr, "env", cfg.App.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// paymentOptions wires the card processor and, when a table is configured, the receipt archive.
func paymentOptions(ctx context.Context, cfg *config.Config) ([]invoice.Option, error) {
	var opts []invoice.Option

	mp, err := processor.New(cfg.MercadoPago.AccessToken, cfg.MercadoPago.Mock)
	switch {
	case errors.Is(err, processor.ErrMissingAccessToken):
		slog.Warn("online card payments disabled", "reason", err)
	case err != nil:
		return nil, fmt.Errorf("creating payment processor: %w", err)
	default:
		opts = append(opts, invoice.WithProcessor(mp))
	}

	if cfg.Receipts.Table != "" {
		dynamo, err := receipt.NewClient(ctx, cfg.Receipts.Region, cfg.Receipts.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("creating receipt archive client: %w", err)
		}

		opts = append(opts, invoice.WithReceiptArchive(receipt.New(dynamo, cfg.Receipts.Table)))
	}

	return opts, nil
}
