package workorder

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/upkeep/internal/workorder"
)

type Response struct {
	ID                 uuid.UUID          `json:"id"`
	Code               string             `json:"code"`
	Title              string             `json:"title"`
	Description        string             `json:"description,omitempty"`
	Priority           workorder.Priority `json:"priority"`
	Status             workorder.Status   `json:"status"`
	EstimatedHours     decimal.Decimal    `json:"estimated_hours"`
	ActualHours        decimal.Decimal    `json:"actual_hours"`
	ValueCents         int64              `json:"value_cents"`
	ClientID           *uuid.UUID         `json:"client_id,omitempty"`
	PropertyID         *uuid.UUID         `json:"property_id,omitempty"`
	AssignedEmployeeID *uuid.UUID         `json:"assigned_employee_id,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          *time.Time         `json:"updated_at,omitempty"`
}

func ToResponse(wo *workorder.WorkOrder) Response {
	return Response{
		ID:                 wo.ID,
		Code:               wo.Code,
		Title:              wo.Title,
		Description:        wo.Description,
		Priority:           wo.Priority,
		Status:             wo.Status,
		EstimatedHours:     wo.EstimatedHours,
		ActualHours:        wo.ActualHours,
		ValueCents:         wo.ValueCents,
		ClientID:           wo.ClientID,
		PropertyID:         wo.PropertyID,
		AssignedEmployeeID: wo.AssignedEmployeeID,
		CreatedAt:          wo.CreatedAt,
		UpdatedAt:          wo.UpdatedAt,
	}
}

type scheduleItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	WorkOrderID uuid.UUID  `json:"work_order_id"`
	EmployeeID  *uuid.UUID `json:"employee_id,omitempty"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      time.Time  `json:"ends_at"`
	Notes       string     `json:"notes,omitempty"`
}

func toScheduleResponse(it *workorder.ScheduleItem) scheduleItemResponse {
	return scheduleItemResponse{
		ID:          it.ID,
		WorkOrderID: it.WorkOrderID,
		EmployeeID:  it.EmployeeID,
		StartsAt:    it.StartsAt,
		EndsAt:      it.EndsAt,
		Notes:       it.Notes,
	}
}

type boardEntryResponse struct {
	scheduleItemResponse
	Code         string             `json:"code"`
	Title        string             `json:"title"`
	Status       workorder.Status   `json:"status"`
	Priority     workorder.Priority `json:"priority"`
	EmployeeName string             `json:"employee_name,omitempty"`
}
