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
)

// seedSeries writes a small recurring series with the given statuses, one
// record per position starting at 1.
func seedSeries(t *testing.T, db *gorm.DB, statuses []string) []models.Payable {
	t.Helper()
	head := models.Payable{
		Description:       "series",
		DueDate:           time.Date(2025, time.April, 5, 0, 0, 0, 0, time.UTC),
		Amount:            100,
		TotalAmount:       100 * float64(len(statuses)),
		Status:            statuses[0],
		IsRecurring:       true,
		RecurringPosition: intPtr(1),
	}
	require.NoError(t, db.Create(&head).Error)
	series := []models.Payable{head}
	for i := 2; i <= len(statuses); i++ {
		rec := models.Payable{
			Description:       "series",
			DueDate:           time.Date(2025, time.Month(3+i), 5, 0, 0, 0, 0, time.UTC),
			Amount:            100,
			TotalAmount:       100 * float64(len(statuses)),
			Status:            statuses[i-1],
			IsRecurring:       true,
			RecurringPosition: intPtr(i),
			RecurringParentID: &head.ID,
		}
		require.NoError(t, db.Create(&rec).Error)
		series = append(series, rec)
	}
	return series
}

func TestDeleteCascadeIncludesPaid(t *testing.T) {
	store, db := newTestStore(t)
	series := seedSeries(t, db, []string{
		models.StatusPending, models.StatusPending, models.StatusPending,
		models.StatusPaid, models.StatusPending,
	})

	pr := NewPropagator(store)
	require.NoError(t, pr.DeletePropagated(context.Background(), series[2].ID, true))

	// positions 3..5 gone, PAID position 4 included
	members, err := store.SeriesMembers(context.Background(), series[0].ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, 1, *members[0].RecurringPosition)
	assert.Equal(t, 2, *members[1].RecurringPosition)

	var deleted int64
	db.Unscoped().Model(&models.Payable{}).
		Where("recurring_position >= 3 AND deleted_at IS NOT NULL").
		Count(&deleted)
	assert.Equal(t, int64(3), deleted)
}

func TestUpdateCascadeSkipsPaid(t *testing.T) {
	store, db := newTestStore(t)
	series := seedSeries(t, db, []string{
		models.StatusPending, models.StatusPending, models.StatusPending,
		models.StatusPaid, models.StatusPending,
	})

	pr := NewPropagator(store)
	amount := 120.0
	_, err := pr.UpdatePropagated(context.Background(), series[2].ID, Changes{Amount: &amount}, true)
	require.NoError(t, err)

	members, err := store.SeriesMembers(context.Background(), series[0].ID)
	require.NoError(t, err)
	byPosition := map[int]float64{}
	for _, m := range members {
		byPosition[*m.RecurringPosition] = m.Amount
	}
	assert.Equal(t, 100.0, byPosition[1])
	assert.Equal(t, 100.0, byPosition[2])
	assert.Equal(t, 120.0, byPosition[3])
	assert.Equal(t, 100.0, byPosition[4], "PAID record excluded from update cascade")
	assert.Equal(t, 120.0, byPosition[5])
}

func TestUpdateSingleRecord(t *testing.T) {
	store, db := newTestStore(t)
	series := seedSeries(t, db, []string{models.StatusPending, models.StatusPending, models.StatusPending})

	pr := NewPropagator(store)
	desc := "renamed"
	updated, err := pr.UpdatePropagated(context.Background(), series[1].ID, Changes{Description: &desc}, false)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Description)

	var others int64
	db.Model(&models.Payable{}).Where("description = ?", "series").Count(&others)
	assert.Equal(t, int64(2), others)
}

func TestDeleteSingleLeavesSiblings(t *testing.T) {
	store, db := newTestStore(t)
	series := seedSeries(t, db, []string{models.StatusPending, models.StatusPending, models.StatusPending})

	pr := NewPropagator(store)
	require.NoError(t, pr.DeletePropagated(context.Background(), series[1].ID, false))

	members, err := store.SeriesMembers(context.Background(), series[0].ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	_, err = store.Get(context.Background(), series[1].ID)
	assert.True(t, errors.Is(err, ErrNotFound), "soft-deleted record is invisible")
}

func TestPropagationOnInstallmentPlan(t *testing.T) {
	store, db := newTestStore(t)
	plan := seedPlan(t, db, 9.00,
		[]float64{3.00, 3.00, 3.00},
		[]string{models.StatusPending, models.StatusPaid, models.StatusPending})

	pr := NewPropagator(store)
	require.NoError(t, pr.DeletePropagated(context.Background(), plan[0].ID, true))

	members, err := store.PlanMembers(context.Background(), plan[0].ID)
	require.NoError(t, err)
	assert.Empty(t, members, "delete cascade from the head removes the whole plan, PAID included")
}

func TestPropagationNotFound(t *testing.T) {
	store, _ := newTestStore(t)
	pr := NewPropagator(store)

	_, err := pr.UpdatePropagated(context.Background(), 4242, Changes{}, false)
	assert.True(t, errors.Is(err, ErrNotFound))
	err = pr.DeletePropagated(context.Background(), 4242, false)
	assert.True(t, errors.Is(err, ErrNotFound))
}
