package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/printflow/backoffice/internal/models"
	"github.com/printflow/backoffice/internal/storage"
)

// Notification kinds emitted by the payables engine.
const (
	KindSeriesCompleted = "series-completed"
	KindSeriesFailed    = "series-failed"
)

// Notifier records notifications for later display; it never pushes.
type Notifier struct {
	store storage.NotificationStore
}

func NewNotifier(store storage.NotificationStore) *Notifier {
	return &Notifier{store: store}
}

func (n *Notifier) SeriesCompleted(ctx context.Context, userID, seriesID uint, count int) error {
	meta, _ := json.Marshal(map[string]any{"series_id": seriesID, "count": count})
	return n.store.CreateNotification(ctx, &models.Notification{
		UserID:   userID,
		Kind:     KindSeriesCompleted,
		Title:    "Recurring payables created",
		Message:  fmt.Sprintf("%d recurring payables were created", count),
		Metadata: string(meta),
	})
}

func (n *Notifier) SeriesFailed(ctx context.Context, userID, seriesID uint, cause error) error {
	meta, _ := json.Marshal(map[string]any{"series_id": seriesID, "error": cause.Error()})
	return n.store.CreateNotification(ctx, &models.Notification{
		UserID:   userID,
		Kind:     KindSeriesFailed,
		Title:    "Recurring payables failed",
		Message:  fmt.Sprintf("creating the recurring payables failed: %v", cause),
		Metadata: string(meta),
	})
}
