package cli

import (
	"database/sql"

	"github.com/MrJamesThe3rd/upkeep/internal/dashboard"
	dashboardstore "github.com/MrJamesThe3rd/upkeep/internal/dashboard/store"
	"github.com/MrJamesThe3rd/upkeep/internal/estimate"
	estimatestore "github.com/MrJamesThe3rd/upkeep/internal/estimate/store"
	"github.com/MrJamesThe3rd/upkeep/internal/export"
	"github.com/MrJamesThe3rd/upkeep/internal/importer"
	"github.com/MrJamesThe3rd/upkeep/internal/invoice"
	invoicestore "github.com/MrJamesThe3rd/upkeep/internal/invoice/store"
	"github.com/MrJamesThe3rd/upkeep/internal/lead"
	leadstore "github.com/MrJamesThe3rd/upkeep/internal/lead/store"
	"github.com/MrJamesThe3rd/upkeep/internal/workorder"
	workorderstore "github.com/MrJamesThe3rd/upkeep/internal/workorder/store"
)

// Services are the engine entry points the CLI drives.
type Services struct {
	Dashboard *dashboard.Service
	Invoices  *invoice.Service
	Exports   *export.Service
	Importer  *importer.Service
}

func NewServices(db *sql.DB) *Services {
	var (
		leads      = lead.NewService(leadstore.New(db))
		estimates  = estimate.NewService(estimatestore.New(db))
		workOrders = workorder.NewService(workorderstore.New(db))
		invoices   = invoice.NewService(invoicestore.New(db))
	)

	return &Services{
		Dashboard: dashboard.NewService(dashboardstore.New(db)),
		Invoices:  invoices,
		Exports:   export.NewService(leads, estimates, workOrders, invoices),
		Importer:  importer.NewService(leads),
	}
}
