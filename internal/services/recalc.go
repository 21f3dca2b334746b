package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/printflow/backoffice/internal/logger"
	"github.com/printflow/backoffice/internal/models"
	"github.com/printflow/backoffice/internal/money"
	"github.com/printflow/backoffice/internal/storage"
	"github.com/printflow/backoffice/internal/validation"
)

// Recalculator redistributes an installment plan's outstanding balance when
// one installment's amount is edited.
type Recalculator struct {
	store storage.PayableStore
	log   zerolog.Logger
}

func NewRecalculator(store storage.PayableStore) *Recalculator {
	return &Recalculator{store: store, log: logger.WithComponent("recalc")}
}

// RecalculateOnEdit applies newAmount to the record and, when propagate is set
// and the record belongs to an installment plan and the amount actually
// changed, redistributes the remaining balance over future unpaid installments
// so the plan sums to its total again at cent granularity. Any 1-cent
// remainder goes to the earliest installments. The whole redistribution runs
// in one transaction.
//
// When no unpaid future installment can absorb a negative remainder the edit
// is still applied and the returned error wraps ErrPlanOverCommitted; the
// returned record is valid in that case.
func (r *Recalculator) RecalculateOnEdit(ctx context.Context, id uint, newAmount float64, propagate bool) (*models.Payable, error) {
	v := validation.Violations{}
	validation.PositiveFloat("amount", newAmount, v)
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}

	rec, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	plain := !propagate ||
		rec.InstallmentNumber == nil || rec.InstallmentOf == nil ||
		money.Cents(newAmount) == money.Cents(rec.Amount)
	if plain {
		if err := r.store.UpdateFields(ctx, id, map[string]any{"amount": newAmount}); err != nil {
			return nil, fmt.Errorf("update amount: %w", err)
		}
		rec.Amount = newAmount
		return rec, nil
	}

	headID := rec.ID
	if rec.ParentID != nil {
		headID = *rec.ParentID
	}
	editedNumber := *rec.InstallmentNumber

	var overCommit *OverCommitError
	err = r.store.WithTx(ctx, func(tx storage.PayableStore) error {
		plan, err := tx.PlanMembers(ctx, headID)
		if err != nil {
			return err
		}
		if len(plan) == 0 {
			return ErrNotFound
		}

		totalCents := money.Cents(rec.TotalAmount)
		var paidThroughCents int64
		var unpaidFuture []models.Payable // ordered by installment number
		for _, p := range plan {
			if p.InstallmentNumber == nil {
				continue
			}
			switch n := *p.InstallmentNumber; {
			case n < editedNumber:
				paidThroughCents += money.Cents(p.Amount)
			case n == editedNumber:
				paidThroughCents += money.Cents(newAmount)
			default:
				if p.Status != models.StatusPaid {
					unpaidFuture = append(unpaidFuture, p)
				}
			}
		}
		remainingCents := totalCents - paidThroughCents

		if err := tx.UpdateFields(ctx, id, map[string]any{"amount": newAmount}); err != nil {
			return err
		}

		if len(unpaidFuture) == 0 {
			if remainingCents < 0 {
				overCommit = &OverCommitError{PlanTotal: rec.TotalAmount, OverrunCents: -remainingCents}
				r.log.Warn().
					Uint("payable_id", id).
					Int64("overrun_cents", -remainingCents).
					Msg("plan over-committed, no future installments to absorb")
			}
			return nil
		}

		count := int64(len(unpaidFuture))
		base := remainingCents / count
		rest := remainingCents % count
		if rest < 0 { // floor semantics for negative balances
			base--
			rest += count
		}
		for i, p := range unpaidFuture {
			cents := base
			if int64(i) < rest {
				cents++
			}
			// totalAmount stays untouched; only the per-installment amount moves
			if err := tx.UpdateFields(ctx, p.ID, map[string]any{"amount": money.FromCents(cents)}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recalculate plan: %w", err)
	}

	rec.Amount = newAmount
	if overCommit != nil {
		return rec, overCommit
	}
	return rec, nil
}
