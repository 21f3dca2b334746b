package services

import (
	"context"
	"fmt"
	"time"

	"github.com/printflow/backoffice/internal/models"
	"github.com/printflow/backoffice/internal/storage"
)

// Propagator applies updates and deletes either to a single payable or
// cascaded over the rest of its installment plan / recurring series.
type Propagator struct {
	store storage.PayableStore
}

func NewPropagator(store storage.PayableStore) *Propagator {
	return &Propagator{store: store}
}

// Changes is the subset of payable fields a propagated update may touch.
// Nil fields are left alone.
type Changes struct {
	Description *string
	SupplierID  *uint
	Amount      *float64
	DueDate     *time.Time
	Status      *string
	PaidDate    *time.Time
}

func (c Changes) fields() map[string]any {
	f := map[string]any{}
	if c.Description != nil {
		f["description"] = *c.Description
	}
	if c.SupplierID != nil {
		f["supplier_id"] = *c.SupplierID
	}
	if c.Amount != nil {
		f["amount"] = *c.Amount
	}
	if c.DueDate != nil {
		f["due_date"] = *c.DueDate
	}
	if c.Status != nil {
		f["status"] = *c.Status
	}
	if c.PaidDate != nil {
		f["paid_date"] = *c.PaidDate
	}
	return f
}

// UpdatePropagated applies the changes to the record and, when applyToFuture
// is set, to every later live sibling of its plan/series that is not PAID.
// The cascade runs in one transaction.
func (pr *Propagator) UpdatePropagated(ctx context.Context, id uint, ch Changes, applyToFuture bool) (*models.Payable, error) {
	rec, err := pr.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := ch.fields()
	if len(fields) == 0 {
		return rec, nil
	}

	if !applyToFuture {
		if err := pr.store.UpdateFields(ctx, id, fields); err != nil {
			return nil, fmt.Errorf("update payable: %w", err)
		}
		return pr.store.Get(ctx, id)
	}

	members, position, err := pr.family(ctx, rec)
	if err != nil {
		return nil, err
	}
	err = pr.store.WithTx(ctx, func(tx storage.PayableStore) error {
		for _, m := range members {
			if memberPosition(m) < position {
				continue
			}
			// update cascade skips PAID records; delete cascade does not
			if m.Status == models.StatusPaid {
				continue
			}
			if err := tx.UpdateFields(ctx, m.ID, fields); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cascade update: %w", err)
	}
	return pr.store.Get(ctx, id)
}

// DeletePropagated soft-deletes the record and, when deleteAllFuture is set,
// every later live sibling regardless of PAID status.
func (pr *Propagator) DeletePropagated(ctx context.Context, id uint, deleteAllFuture bool) error {
	rec, err := pr.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if !deleteAllFuture {
		if err := pr.store.SoftDelete(ctx, []uint{id}); err != nil {
			return fmt.Errorf("delete payable: %w", err)
		}
		return nil
	}

	members, position, err := pr.family(ctx, rec)
	if err != nil {
		return err
	}
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		if memberPosition(m) < position {
			continue
		}
		ids = append(ids, m.ID)
	}
	err = pr.store.WithTx(ctx, func(tx storage.PayableStore) error {
		return tx.SoftDelete(ctx, ids)
	})
	if err != nil {
		return fmt.Errorf("cascade delete: %w", err)
	}
	return nil
}

// family resolves the plan or series the record belongs to, returning its live
// members and the record's own position within it. A standalone payable is its
// own one-member family.
func (pr *Propagator) family(ctx context.Context, rec *models.Payable) ([]models.Payable, int, error) {
	switch {
	case rec.IsRecurring && rec.RecurringPosition != nil:
		headID := rec.ID
		if rec.RecurringParentID != nil {
			headID = *rec.RecurringParentID
		}
		members, err := pr.store.SeriesMembers(ctx, headID)
		return members, *rec.RecurringPosition, err
	case rec.InstallmentNumber != nil:
		headID := rec.ID
		if rec.ParentID != nil {
			headID = *rec.ParentID
		}
		members, err := pr.store.PlanMembers(ctx, headID)
		return members, *rec.InstallmentNumber, err
	default:
		return []models.Payable{*rec}, 0, nil
	}
}

func memberPosition(m models.Payable) int {
	if m.RecurringPosition != nil {
		return *m.RecurringPosition
	}
	if m.InstallmentNumber != nil {
		return *m.InstallmentNumber
	}
	return 0
}
