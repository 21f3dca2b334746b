package storage

import (
	"context"
	"errors"

	"github.com/printflow/backoffice/internal/models"
)

// ErrNotFound is returned when a requested record does not exist or has been
// soft-deleted.
var ErrNotFound = errors.New("record not found")

// PayableStore is the persistence boundary of the payables engine. Services
// receive it at construction so tests can substitute transactional or failing
// doubles; there is no package-level database handle.
type PayableStore interface {
	// Create persists a single payable and fills its ID.
	Create(ctx context.Context, p *models.Payable) error

	// CreateBatch persists all records in one insert and fills their IDs.
	// Relational links (tags) cannot be expressed here; see AttachTags.
	CreateBatch(ctx context.Context, ps []*models.Payable) error

	// Get returns a live payable by id, ErrNotFound otherwise.
	Get(ctx context.Context, id uint) (*models.Payable, error)

	// List returns live payables newest first, plus the unpaged total.
	List(ctx context.Context, limit, offset int) ([]models.Payable, int64, error)

	// PlanMembers returns every live record of the installment plan headed by
	// headID (head included), ordered by installment number.
	PlanMembers(ctx context.Context, headID uint) ([]models.Payable, error)

	// SeriesMembers returns every live record of the recurring series headed by
	// headID (head included), ordered by recurring position.
	SeriesMembers(ctx context.Context, headID uint) ([]models.Payable, error)

	// UpdateFields applies a partial update to a single record.
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error

	// SoftDelete marks the given records deleted. They stay in storage but
	// disappear from every read and aggregate path.
	SoftDelete(ctx context.Context, ids []uint) error

	// AttachTags links existing tags to a payable (one follow-up write after a
	// batch create).
	AttachTags(ctx context.Context, payableID uint, tags []models.Tag) error

	// TagsByID resolves tags for association.
	TagsByID(ctx context.Context, ids []uint) ([]models.Tag, error)

	// SumByStatus returns the open amount and row count for a stored status.
	SumByStatus(ctx context.Context, status string) (float64, int64, error)

	// WithTx runs fn against a store bound to a single database transaction.
	// An error from fn rolls the whole transaction back.
	WithTx(ctx context.Context, fn func(PayableStore) error) error
}

// NotificationStore persists notifications for later display.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	NotificationsByUser(ctx context.Context, userID uint) ([]models.Notification, error)
}
