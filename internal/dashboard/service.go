package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/estimate"
	"github.com/MrJamesThe3rd/upkeep/internal/invoice"
	"github.com/MrJamesThe3rd/upkeep/internal/lead"
	"github.com/MrJamesThe3rd/upkeep/internal/workorder"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=dashboard
type Repository interface {
	LeadsByStatus(ctx context.Context, createdSince *time.Time) (map[lead.Status]Totals, error)
	EstimatesByStatus(ctx context.Context, createdSince *time.Time) (map[estimate.Status]Totals, error)
	WorkOrdersByStatus(ctx context.Context, createdSince *time.Time) (map[workorder.Status]Totals, error)
	InvoicesByStatus(ctx context.Context) (map[invoice.Status]Totals, error)

	// PaidByMonth sums paid invoices by the UTC month of paid_at, keyed by month start.
	PaidByMonth(ctx context.Context, from time.Time) (map[time.Time]int64, error)
	Overdue(ctx context.Context, now time.Time) ([]*OverdueInvoice, error)
	TopClients(ctx context.Context, limit int) ([]*ClientRevenue, error)
	IssuedSince(ctx context.Context, from time.Time) (Totals, error)
	PaidSince(ctx context.Context, from time.Time) (Totals, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Pipelines(ctx context.Context) (*Pipelines, error) {
	if _, err := auth.Authorize(ctx, auth.OpViewDashboard); err != nil {
		return nil, err
	}

	return s.pipelines(ctx)
}

func (s *Service) pipelines(ctx context.Context) (*Pipelines, error) {
	leads, err := s.repo.LeadsByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}

	estimates, err := s.repo.EstimatesByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}

	workOrders, err := s.repo.WorkOrdersByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}

	invoices, err := s.repo.InvoicesByStatus(ctx)
	if err != nil {
		return nil, err
	}

	return &Pipelines{
		Leads:      zeroFill(lead.Statuses(), leads, false),
		Estimates:  zeroFill(estimate.Statuses(), estimates, false),
		WorkOrders: zeroFill(workorder.Statuses(), workOrders, false),
		Invoices:   zeroFill(invoice.Statuses(), invoices, false),
	}, nil
}

// Revenue returns one bucket per month of the trailing window, oldest first.
func (s *Service) Revenue(ctx context.Context, now time.Time) ([]MonthRevenue, error) {
	if _, err := auth.Authorize(ctx, auth.OpViewDashboard); err != nil {
		return nil, err
	}

	return s.revenue(ctx, now)
}

func (s *Service) revenue(ctx context.Context, now time.Time) ([]MonthRevenue, error) {
	from := RevenueWindow(now)

	paid, err := s.repo.PaidByMonth(ctx, from)
	if err != nil {
		return nil, err
	}

	buckets := make([]MonthRevenue, RevenueMonths)

	for i := range buckets {
		month := from.AddDate(0, i, 0)
		buckets[i] = MonthRevenue{Label: month.Format("Jan"), Month: month, AmountCents: paid[month]}
	}

	return buckets, nil
}

func (s *Service) Overdue(ctx context.Context, now time.Time) ([]*OverdueInvoice, error) {
	if _, err := auth.Authorize(ctx, auth.OpViewDashboard); err != nil {
		return nil, err
	}

	return s.overdue(ctx, now)
}

func (s *Service) overdue(ctx context.Context, now time.Time) ([]*OverdueInvoice, error) {
	rows, err := s.repo.Overdue(ctx, now)
	if err != nil {
		return nil, err
	}

	out := rows[:0]

	for _, o := range rows {
		if !invoice.IsOverdue(o.Invoice, now) {
			continue
		}

		o.DaysOverdue = int(now.Sub(o.Invoice.DueAt) / (24 * time.Hour))
		out = append(out, o)
	}

	return out, nil
}

func (s *Service) TopClients(ctx context.Context) ([]*ClientRevenue, error) {
	if _, err := auth.Authorize(ctx, auth.OpViewDashboard); err != nil {
		return nil, err
	}

	return s.repo.TopClients(ctx, TopClientLimit)
}

func (s *Service) Quarterly(ctx context.Context, now time.Time) (*Quarterly, error) {
	if _, err := auth.Authorize(ctx, auth.OpViewDashboard); err != nil {
		return nil, err
	}

	return s.quarterly(ctx, now)
}

func (s *Service) quarterly(ctx context.Context, now time.Time) (*Quarterly, error) {
	start := QuarterStart(now)

	issued, err := s.repo.IssuedSince(ctx, start)
	if err != nil {
		return nil, err
	}

	paid, err := s.repo.PaidSince(ctx, start)
	if err != nil {
		return nil, err
	}

	estimates, err := s.repo.EstimatesByStatus(ctx, &start)
	if err != nil {
		return nil, err
	}

	leads, err := s.repo.LeadsByStatus(ctx, &start)
	if err != nil {
		return nil, err
	}

	workOrders, err := s.repo.WorkOrdersByStatus(ctx, &start)
	if err != nil {
		return nil, err
	}

	return &Quarterly{
		Start:      start,
		Issued:     issued,
		Paid:       paid,
		Estimates:  zeroFill(estimate.Statuses(), estimates, true),
		Leads:      zeroFill(lead.Statuses(), leads, false),
		WorkOrders: zeroFill(workorder.Statuses(), workOrders, false),
	}, nil
}

// Summary runs every dashboard query concurrently.
func (s *Service) Summary(ctx context.Context, now time.Time) (*Summary, error) {
	if _, err := auth.Authorize(ctx, auth.OpViewDashboard); err != nil {
		return nil, err
	}

	sum := &Summary{GeneratedAt: now}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		sum.Pipelines, err = s.pipelines(gctx)
		return err
	})
	g.Go(func() (err error) {
		sum.Revenue, err = s.revenue(gctx, now)
		return err
	})
	g.Go(func() (err error) {
		sum.Overdue, err = s.overdue(gctx, now)
		return err
	})
	g.Go(func() (err error) {
		sum.TopClients, err = s.repo.TopClients(gctx, TopClientLimit)
		return err
	})
	g.Go(func() (err error) {
		sum.Quarterly, err = s.quarterly(gctx, now)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return sum, nil
}
