package models

import (
	"time"

	"gorm.io/gorm"
)

// Payable statuses. OVERDUE is almost always derived at read time from the due
// date; it is only stored when set explicitly.
const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
	StatusOverdue = "OVERDUE"
)

// Creation job statuses, stored on the head record of a recurring series while
// the remaining occurrences are written in the background. Transitions are
// monotonic: PROCESSING -> COMPLETED or PROCESSING -> FAILED.
const (
	JobProcessing = "PROCESSING"
	JobCompleted  = "COMPLETED"
	JobFailed     = "FAILED"
)

const (
	// SeriesLength is the fixed number of monthly occurrences of a recurring series.
	SeriesLength = 60
	// ChunkSize is how many series records are written per batch.
	ChunkSize = 20
	// MaxInstallments bounds the installment count of a plan.
	MaxInstallments = 99
)

// Payable is a single accounts-payable row: standalone, one installment of a
// plan, or one occurrence of a recurring series.
type Payable struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Description string     `gorm:"not null" json:"description"`
	SupplierID  *uint      `gorm:"index" json:"supplier_id,omitempty"`
	Supplier    *Supplier  `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	DueDate     time.Time  `gorm:"not null;index" json:"due_date"`
	Amount      float64    `gorm:"not null" json:"amount"`
	TotalAmount float64    `gorm:"not null" json:"total_amount"`
	Status      string     `gorm:"not null;default:'PENDING';index" json:"status"`
	PaidDate    *time.Time `json:"paid_date,omitempty"`

	// Installment plan linkage. The number-1 record is the head (ParentID nil);
	// the other records of the plan point at it.
	InstallmentNumber *int  `json:"installment_number,omitempty"`
	InstallmentOf     *int  `json:"installment_of,omitempty"`
	ParentID          *uint `gorm:"index" json:"parent_id,omitempty"`

	// Recurring series linkage, mirroring the installment shape.
	// CreationJobStatus only ever exists on the position-1 record.
	IsRecurring       bool    `gorm:"default:false" json:"is_recurring"`
	RecurringPosition *int    `json:"recurring_position,omitempty"`
	RecurringParentID *uint   `gorm:"index" json:"recurring_parent_id,omitempty"`
	CreationJobStatus *string `json:"creation_job_status,omitempty"`

	Tags []Tag `gorm:"many2many:payable_tags" json:"tags,omitempty"`

	// Soft delete: rows stay in storage but disappear from every read path.
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// EffectiveStatus computes the read-time status of the payable: PENDING with a
// due date strictly before today reads as OVERDUE. Same-day is not overdue.
// Pure; callers must never write the result back.
func (p *Payable) EffectiveStatus(today time.Time) string {
	if p.Status != StatusPending {
		return p.Status
	}
	y, m, d := today.Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, today.Location())
	dy, dm, dd := p.DueDate.Date()
	due := time.Date(dy, dm, dd, 0, 0, 0, 0, today.Location())
	if due.Before(startOfDay) {
		return StatusOverdue
	}
	return StatusPending
}
