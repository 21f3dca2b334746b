package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/printflow/backoffice/internal/models"
	"github.com/printflow/backoffice/internal/money"
)

// seedPlan writes a plan of len(amounts) installments sharing total, returning
// the records in installment order.
func seedPlan(t *testing.T, db *gorm.DB, total float64, amounts []float64, statuses []string) []models.Payable {
	t.Helper()
	n := len(amounts)
	head := models.Payable{
		Description:       "plan",
		DueDate:           time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		Amount:            amounts[0],
		TotalAmount:       total,
		Status:            statuses[0],
		InstallmentNumber: intPtr(1),
		InstallmentOf:     intPtr(n),
	}
	require.NoError(t, db.Create(&head).Error)
	plan := []models.Payable{head}
	for i := 2; i <= n; i++ {
		child := models.Payable{
			Description:       "plan",
			DueDate:           time.Date(2025, time.Month(1+i), 1, 0, 0, 0, 0, time.UTC),
			Amount:            amounts[i-1],
			TotalAmount:       total,
			Status:            statuses[i-1],
			InstallmentNumber: intPtr(i),
			InstallmentOf:     intPtr(n),
			ParentID:          &head.ID,
		}
		require.NoError(t, db.Create(&child).Error)
		plan = append(plan, child)
	}
	return plan
}

func planAmountsCents(t *testing.T, db *gorm.DB, headID uint) []int64 {
	t.Helper()
	var ps []models.Payable
	require.NoError(t, db.Where("id = ? OR parent_id = ?", headID, headID).Order("installment_number asc").Find(&ps).Error)
	out := make([]int64, 0, len(ps))
	for _, p := range ps {
		out = append(out, money.Cents(p.Amount))
	}
	return out
}

func TestRecalculateRedistribution(t *testing.T) {
	store, db := newTestStore(t)
	plan := seedPlan(t, db, 10.00,
		[]float64{2.50, 2.50, 2.50, 2.50},
		[]string{models.StatusPending, models.StatusPending, models.StatusPending, models.StatusPending})

	rc := NewRecalculator(store)
	updated, err := rc.RecalculateOnEdit(context.Background(), plan[0].ID, 3.00, true)
	require.NoError(t, err)
	assert.Equal(t, 3.00, updated.Amount)

	got := planAmountsCents(t, db, plan[0].ID)
	assert.Equal(t, []int64{300, 234, 233, 233}, got)

	var sum int64
	for _, c := range got {
		sum += c
	}
	assert.Equal(t, int64(1000), sum, "plan sums to its total again")
}

func TestRecalculateSkipsPaid(t *testing.T) {
	store, db := newTestStore(t)
	plan := seedPlan(t, db, 10.00,
		[]float64{2.50, 2.50, 2.50, 2.50},
		[]string{models.StatusPending, models.StatusPaid, models.StatusPending, models.StatusPending})

	rc := NewRecalculator(store)
	_, err := rc.RecalculateOnEdit(context.Background(), plan[0].ID, 3.00, true)
	require.NoError(t, err)

	got := planAmountsCents(t, db, plan[0].ID)
	// #2 is PAID: untouched and excluded from the redistribution pool
	assert.Equal(t, []int64{300, 250, 350, 350}, got)
}

func TestRecalculateFromMiddleInstallment(t *testing.T) {
	store, db := newTestStore(t)
	plan := seedPlan(t, db, 10.00,
		[]float64{2.50, 2.50, 2.50, 2.50},
		[]string{models.StatusPaid, models.StatusPending, models.StatusPending, models.StatusPending})

	rc := NewRecalculator(store)
	_, err := rc.RecalculateOnEdit(context.Background(), plan[1].ID, 3.50, true)
	require.NoError(t, err)

	// paid-through = 2.50 + 3.50; remaining 4.00 over #3 and #4
	got := planAmountsCents(t, db, plan[0].ID)
	assert.Equal(t, []int64{250, 350, 200, 200}, got)
}

func TestRecalculateOverCommitted(t *testing.T) {
	store, db := newTestStore(t)
	plan := seedPlan(t, db, 10.00,
		[]float64{5.00, 5.00},
		[]string{models.StatusPending, models.StatusPaid})

	rc := NewRecalculator(store)
	updated, err := rc.RecalculateOnEdit(context.Background(), plan[0].ID, 12.00, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPlanOverCommitted))
	var oc *OverCommitError
	require.True(t, errors.As(err, &oc))
	assert.Equal(t, int64(200), oc.OverrunCents)

	// the edit itself still applied; nothing else moved
	require.NotNil(t, updated)
	assert.Equal(t, 12.00, updated.Amount)
	got := planAmountsCents(t, db, plan[0].ID)
	assert.Equal(t, []int64{1200, 500}, got)
}

func TestRecalculateWithoutPropagation(t *testing.T) {
	store, db := newTestStore(t)
	plan := seedPlan(t, db, 10.00,
		[]float64{2.50, 2.50, 2.50, 2.50},
		[]string{models.StatusPending, models.StatusPending, models.StatusPending, models.StatusPending})

	rc := NewRecalculator(store)
	_, err := rc.RecalculateOnEdit(context.Background(), plan[0].ID, 3.00, false)
	require.NoError(t, err)

	got := planAmountsCents(t, db, plan[0].ID)
	assert.Equal(t, []int64{300, 250, 250, 250}, got, "siblings untouched without propagation")
}

func TestRecalculateUnchangedAmountIsPlainUpdate(t *testing.T) {
	store, db := newTestStore(t)
	plan := seedPlan(t, db, 10.00,
		[]float64{2.50, 2.50, 2.50, 2.50},
		[]string{models.StatusPending, models.StatusPending, models.StatusPending, models.StatusPending})

	rc := NewRecalculator(store)
	_, err := rc.RecalculateOnEdit(context.Background(), plan[1].ID, 2.50, true)
	require.NoError(t, err)

	got := planAmountsCents(t, db, plan[0].ID)
	assert.Equal(t, []int64{250, 250, 250, 250}, got)
}

func TestRecalculateRejectsNonPositiveAmount(t *testing.T) {
	store, _ := newTestStore(t)
	rc := NewRecalculator(store)
	_, err := rc.RecalculateOnEdit(context.Background(), 1, 0, true)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestRecalculateNotFound(t *testing.T) {
	store, _ := newTestStore(t)
	rc := NewRecalculator(store)
	_, err := rc.RecalculateOnEdit(context.Background(), 9999, 10, true)
	assert.True(t, errors.Is(err, ErrNotFound))
}
