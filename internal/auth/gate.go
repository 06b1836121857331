package auth

import (
	"context"
	"slices"
)

// Operation names a gated engine entry point.
type Operation string

const (
	OpSubmitBooking   Operation = "booking.submit"
	OpManageBookings  Operation = "booking.manage"
	OpManageLeads     Operation = "lead.manage"
	OpManageClients   Operation = "client.manage"
	OpManageContacts  Operation = "contact.manage"
	OpManageEstimates Operation = "estimate.manage"
	OpConvertEstimate Operation = "estimate.convert"
	OpManageWork      Operation = "workorder.manage"
	OpIssueInvoice    Operation = "invoice.issue"
	OpSettleInvoice   Operation = "invoice.settle"
	OpManagePayroll   Operation = "payroll.manage"
	OpViewDashboard   Operation = "dashboard.view"
	OpExport          Operation = "export.read"
	OpDelete          Operation = "record.delete"
)

// anonymous marks operations open to unauthenticated callers.
const anonymous Role = ""

var (
	staff = []Role{RoleAdmin, RoleManager}

	policy = map[Operation][]Role{
		OpSubmitBooking:   {anonymous, RoleAdmin, RoleManager, RoleClient},
		OpManageBookings:  staff,
		OpManageLeads:     staff,
		OpManageClients:   staff,
		OpManageContacts:  staff,
		OpManageEstimates: staff,
		OpConvertEstimate: staff,
		OpManageWork:      staff,
		OpIssueInvoice:    staff,
		OpSettleInvoice:   staff,
		OpManagePayroll:   {RoleAdmin},
		OpViewDashboard:   staff,
		OpExport:          staff,
		OpDelete:          {RoleAdmin},
	}
)

// Authorize is the single capability check run before every engine operation. It returns the
// acting principal (zero value for anonymous callers of open operations) or ErrUnauthorized.
// Unknown operations are denied.
func Authorize(ctx context.Context, op Operation) (Principal, error) {
	allowed, ok := policy[op]
	if !ok {
		return Principal{}, ErrUnauthorized
	}

	p, authenticated := FromContext(ctx)

	role := anonymous
	if authenticated {
		role = p.Role
	}

	if !slices.Contains(allowed, role) {
		return Principal{}, ErrUnauthorized
	}

	return p, nil
}
