package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/printflow/backoffice/internal/models"
)

// GormStore implements PayableStore and NotificationStore on top of gorm.
// Soft deletes ride on gorm.DeletedAt: Delete marks the row and the default
// scope hides it from every query, which is exactly the visibility contract
// the engine needs.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) Create(ctx context.Context, p *models.Payable) error {
	return s.db.WithContext(ctx).Omit("Tags", "Supplier").Create(p).Error
}

func (s *GormStore) CreateBatch(ctx context.Context, ps []*models.Payable) error {
	if len(ps) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Omit("Tags", "Supplier").Create(&ps).Error
}

func (s *GormStore) Get(ctx context.Context, id uint) (*models.Payable, error) {
	var p models.Payable
	err := s.db.WithContext(ctx).Preload("Tags").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) List(ctx context.Context, limit, offset int) ([]models.Payable, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Payable{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ps []models.Payable
	err := s.db.WithContext(ctx).Preload("Tags").Order("id desc").Limit(limit).Offset(offset).Find(&ps).Error
	if err != nil {
		return nil, 0, err
	}
	return ps, total, nil
}

func (s *GormStore) PlanMembers(ctx context.Context, headID uint) ([]models.Payable, error) {
	var ps []models.Payable
	err := s.db.WithContext(ctx).
		Where("id = ? OR parent_id = ?", headID, headID).
		Order("installment_number asc").
		Find(&ps).Error
	return ps, err
}

func (s *GormStore) SeriesMembers(ctx context.Context, headID uint) ([]models.Payable, error) {
	var ps []models.Payable
	err := s.db.WithContext(ctx).
		Where("id = ? OR recurring_parent_id = ?", headID, headID).
		Order("recurring_position asc").
		Find(&ps).Error
	return ps, err
}

func (s *GormStore) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	res := s.db.WithContext(ctx).Model(&models.Payable{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) SoftDelete(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Delete(&models.Payable{}, ids).Error
}

func (s *GormStore) AttachTags(ctx context.Context, payableID uint, tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	p := models.Payable{ID: payableID}
	return s.db.WithContext(ctx).Model(&p).Association("Tags").Append(&tags)
}

func (s *GormStore) TagsByID(ctx context.Context, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error
	return tags, err
}

func (s *GormStore) SumByStatus(ctx context.Context, status string) (float64, int64, error) {
	var row struct {
		Total float64
		N     int64
	}
	err := s.db.WithContext(ctx).Model(&models.Payable{}).
		Select("COALESCE(SUM(amount),0) as total, COUNT(*) as n").
		Where("status = ?", status).
		Scan(&row).Error
	return row.Total, row.N, err
}

func (s *GormStore) WithTx(ctx context.Context, fn func(PayableStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *GormStore) NotificationsByUser(ctx context.Context, userID uint) ([]models.Notification, error) {
	var ns []models.Notification
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id desc").Find(&ns).Error
	return ns, err
}
