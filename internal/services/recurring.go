package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/printflow/backoffice/internal/jobs"
	"github.com/printflow/backoffice/internal/logger"
	"github.com/printflow/backoffice/internal/models"
	"github.com/printflow/backoffice/internal/storage"
	"github.com/printflow/backoffice/internal/validation"
)

// Recurring materializes fixed-length monthly series of payables. The head
// record is written synchronously; the remaining occurrences are created by a
// background job in ordered chunks, tracked through the head's job status
// field, with compensating soft delete on failure.
type Recurring struct {
	store    storage.PayableStore
	notifier *Notifier
	runner   *jobs.Runner
	log      zerolog.Logger
}

func NewRecurring(store storage.PayableStore, notifier *Notifier, runner *jobs.Runner) *Recurring {
	return &Recurring{
		store:    store,
		notifier: notifier,
		runner:   runner,
		log:      logger.WithComponent("recurring"),
	}
}

// RecurringInput describes one occurrence of the series to create.
type RecurringInput struct {
	Description string
	SupplierID  *uint
	DueDate     time.Time
	Amount      float64
	UserID      uint
	Tags        []models.Tag
}

// CreateSeries writes the position-1 record with job status PROCESSING and
// returns it immediately; the remaining occurrences are materialized out of
// band. The caller gets no direct completion signal, only the later
// notification.
func (s *Recurring) CreateSeries(ctx context.Context, in RecurringInput) (*models.Payable, error) {
	v := validation.Violations{}
	validation.Required("description", in.Description, v)
	validation.PositiveFloat("amount", in.Amount, v)
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}

	position := 1
	jobStatus := models.JobProcessing
	head := &models.Payable{
		Description:       in.Description,
		SupplierID:        in.SupplierID,
		DueDate:           in.DueDate,
		Amount:            in.Amount,
		TotalAmount:       in.Amount * models.SeriesLength,
		Status:            models.StatusPending,
		IsRecurring:       true,
		RecurringPosition: &position,
		CreationJobStatus: &jobStatus,
	}
	err := s.store.WithTx(ctx, func(tx storage.PayableStore) error {
		if err := tx.Create(ctx, head); err != nil {
			return err
		}
		return tx.AttachTags(ctx, head.ID, in.Tags)
	})
	if err != nil {
		return nil, fmt.Errorf("create series head: %w", err)
	}

	s.runner.Submit(fmt.Sprintf("recurring-series-%d", head.ID), func(jobCtx context.Context) error {
		return s.materialize(jobCtx, head.ID, in)
	})
	return head, nil
}

// materialize writes positions 2..SeriesLength in ordered chunks of ChunkSize,
// each chunk (batch insert + per-record tag attach) in one transaction, then
// flips the head to COMPLETED. Chunks are strictly sequential so positions are
// deterministic and the rollback scope is exactly "chunks written so far".
// This job is the sole writer of the series' job status.
func (s *Recurring) materialize(ctx context.Context, headID uint, in RecurringInput) error {
	remaining := make([]*models.Payable, 0, models.SeriesLength-1)
	for pos := 2; pos <= models.SeriesLength; pos++ {
		position := pos
		parentID := headID
		remaining = append(remaining, &models.Payable{
			Description:       in.Description,
			SupplierID:        in.SupplierID,
			DueDate:           addMonthsClamped(in.DueDate, pos-1),
			Amount:            in.Amount,
			TotalAmount:       in.Amount * models.SeriesLength,
			Status:            models.StatusPending,
			IsRecurring:       true,
			RecurringPosition: &position,
			RecurringParentID: &parentID,
		})
	}

	created := []uint{headID}
	var failure error
	for start := 0; start < len(remaining); start += models.ChunkSize {
		end := start + models.ChunkSize
		if end > len(remaining) {
			end = len(remaining)
		}
		chunk := remaining[start:end]
		failure = s.store.WithTx(ctx, func(tx storage.PayableStore) error {
			if err := tx.CreateBatch(ctx, chunk); err != nil {
				return err
			}
			for _, rec := range chunk {
				if err := tx.AttachTags(ctx, rec.ID, in.Tags); err != nil {
					return err
				}
			}
			return nil
		})
		if failure != nil {
			break
		}
		for _, rec := range chunk {
			created = append(created, rec.ID)
		}
		s.log.Debug().Uint("series", headID).Int("written", len(created)).Msg("chunk written")
	}

	if failure != nil {
		s.rollback(ctx, headID, created, in.UserID, failure)
		return fmt.Errorf("materialize series %d: %w", headID, failure)
	}

	if err := s.store.UpdateFields(ctx, headID, map[string]any{"creation_job_status": models.JobCompleted}); err != nil {
		s.rollback(ctx, headID, created, in.UserID, err)
		return fmt.Errorf("complete series %d: %w", headID, err)
	}
	if err := s.notifier.SeriesCompleted(ctx, in.UserID, headID, models.SeriesLength); err != nil {
		s.log.Error().Err(err).Uint("series", headID).Msg("completion notification failed")
	}
	s.log.Info().Uint("series", headID).Int("count", models.SeriesLength).Msg("series completed")
	return nil
}

// rollback compensates a failed materialization: FAILED is recorded on the
// head first, then every record written for the series (head included) is
// soft-deleted, so no live trace of the job remains. The failure reaches the
// user only through the notification.
func (s *Recurring) rollback(ctx context.Context, headID uint, created []uint, userID uint, cause error) {
	if err := s.store.UpdateFields(ctx, headID, map[string]any{"creation_job_status": models.JobFailed}); err != nil {
		s.log.Error().Err(err).Uint("series", headID).Msg("failed to mark series FAILED")
	}
	if err := s.store.SoftDelete(ctx, created); err != nil {
		s.log.Error().Err(err).Uint("series", headID).Msg("failed to soft-delete series records")
	}
	if err := s.notifier.SeriesFailed(ctx, userID, headID, cause); err != nil {
		s.log.Error().Err(err).Uint("series", headID).Msg("failure notification failed")
	}
}
