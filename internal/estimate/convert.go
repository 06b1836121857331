package estimate

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/money"
	"github.com/MrJamesThe3rd/upkeep/internal/workorder"
)

// Convert turns an estimate into a backlog work order carrying its value, client and property.
//
// The estimate row is locked for the whole transaction, so concurrent calls serialize. Converting
// an estimate that already produced a work order is a designed no-op: the existing work order is
// returned with AlreadyConverted set and nothing is written.
func (s *Service) Convert(ctx context.Context, id uuid.UUID) (*ConversionResult, error) {
	p, err := auth.Authorize(ctx, auth.OpConvertEstimate)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin conversion: %w", err)
	}
	defer tx.Rollback()

	est, err := tx.Lock(ctx, id)
	if err != nil {
		return nil, err
	}

	if est.ConvertedWorkOrderID != nil {
		wo, err := tx.GetWorkOrder(ctx, *est.ConvertedWorkOrderID)
		if err != nil {
			return nil, fmt.Errorf("load converted work order: %w", err)
		}

		return &ConversionResult{Estimate: est, WorkOrder: wo, AlreadyConverted: true}, nil
	}

	if !est.Status.Convertible() {
		return nil, fmt.Errorf("%w: status is %s", ErrNotConvertible, est.Status)
	}

	code, err := tx.NextNumber(ctx, workorder.CodePrefix, s.now())
	if err != nil {
		return nil, err
	}

	wo := &workorder.WorkOrder{
		ID:          uuid.New(),
		Code:        code,
		Title:       est.Title,
		Description: fmt.Sprintf("Converted from estimate %s", est.Number),
		Priority:    workorder.PriorityMedium,
		Status:      workorder.StatusBacklog,
		ValueCents:  est.AmountCents,
		ClientID:    est.ClientID,
		PropertyID:  est.PropertyID,
	}

	if err := tx.InsertWorkOrder(ctx, wo); err != nil {
		return nil, fmt.Errorf("insert work order: %w", err)
	}

	if err := tx.MarkConverted(ctx, est.ID, wo.ID); err != nil {
		return nil, fmt.Errorf("mark estimate converted: %w", err)
	}

	est.Status = StatusConverted
	est.ConvertedWorkOrderID = &wo.ID

	entry := activity.NewEntry(p, activity.ActionConverted, activity.EntityEstimate, est.ID, activity.SeveritySuccess,
		"Estimate %s (%s) converted to work order %s", est.Number, money.Format(est.AmountCents), wo.Code)
	if err := tx.Record(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit conversion: %w", err)
	}

	return &ConversionResult{Estimate: est, WorkOrder: wo}, nil
}
