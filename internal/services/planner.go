package services

import (
	"context"
	"fmt"
	"time"

	"github.com/printflow/backoffice/internal/models"
	"github.com/printflow/backoffice/internal/storage"
	"github.com/printflow/backoffice/internal/validation"
)

// Planner splits a payable obligation into linked installment records.
type Planner struct {
	store storage.PayableStore
}

func NewPlanner(store storage.PayableStore) *Planner {
	return &Planner{store: store}
}

// PlanInput describes an obligation to split.
type PlanInput struct {
	Description  string
	SupplierID   *uint
	DueDate      time.Time
	TotalAmount  float64
	Installments int
	Tags         []models.Tag
}

// CreatePlan creates an installment plan of 1..N records. Every record carries
// the plan's total and a straight N-way division of it; the division is not
// remainder-corrected here, a later recalculation squares the plan to the cent.
// Due dates advance one calendar month per installment, clamped to month end.
// The whole plan is written in one transaction.
func (pl *Planner) CreatePlan(ctx context.Context, in PlanInput) ([]models.Payable, error) {
	v := validation.Violations{}
	validation.Required("description", in.Description, v)
	validation.PositiveFloat("total_amount", in.TotalAmount, v)
	validation.RangeInt("installments", in.Installments, 1, models.MaxInstallments, v)
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}

	if in.Installments == 1 {
		p := &models.Payable{
			Description: in.Description,
			SupplierID:  in.SupplierID,
			DueDate:     in.DueDate,
			Amount:      in.TotalAmount,
			TotalAmount: in.TotalAmount,
			Status:      models.StatusPending,
		}
		err := pl.store.WithTx(ctx, func(tx storage.PayableStore) error {
			if err := tx.Create(ctx, p); err != nil {
				return err
			}
			return tx.AttachTags(ctx, p.ID, in.Tags)
		})
		if err != nil {
			return nil, fmt.Errorf("create payable: %w", err)
		}
		p.Tags = in.Tags
		return []models.Payable{*p}, nil
	}

	n := in.Installments
	perInstallment := in.TotalAmount / float64(n)

	headNumber := 1
	head := &models.Payable{
		Description:       in.Description,
		SupplierID:        in.SupplierID,
		DueDate:           in.DueDate,
		Amount:            perInstallment,
		TotalAmount:       in.TotalAmount,
		Status:            models.StatusPending,
		InstallmentNumber: &headNumber,
		InstallmentOf:     &n,
	}
	children := make([]*models.Payable, 0, n-1)

	err := pl.store.WithTx(ctx, func(tx storage.PayableStore) error {
		if err := tx.Create(ctx, head); err != nil {
			return err
		}
		for i := 2; i <= n; i++ {
			number := i
			children = append(children, &models.Payable{
				Description:       in.Description,
				SupplierID:        in.SupplierID,
				DueDate:           addMonthsClamped(in.DueDate, i-1),
				Amount:            perInstallment,
				TotalAmount:       in.TotalAmount,
				Status:            models.StatusPending,
				InstallmentNumber: &number,
				InstallmentOf:     &n,
				ParentID:          &head.ID,
			})
		}
		if err := tx.CreateBatch(ctx, children); err != nil {
			return err
		}
		// batch create cannot carry relations; attach tags per record afterwards
		if err := tx.AttachTags(ctx, head.ID, in.Tags); err != nil {
			return err
		}
		for _, c := range children {
			if err := tx.AttachTags(ctx, c.ID, in.Tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create installment plan: %w", err)
	}

	plan := make([]models.Payable, 0, n)
	plan = append(plan, *head)
	for _, c := range children {
		plan = append(plan, *c)
	}
	return plan, nil
}
