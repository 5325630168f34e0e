package orders

import (
	"context"

	"github.com/angelmondragon/fastfood-backend/pkg/db/models"
	"github.com/angelmondragon/fastfood-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository persists and reads the append-only order history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	InsertRecords(ctx context.Context, records []models.OrderHistoryRecord) error
	ListAll(ctx context.Context) ([]models.OrderHistoryRecord, error)
	ListPage(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.OrderHistoryRecord, error)
	ListByCustomer(ctx context.Context, customerKey string) ([]models.OrderHistoryRecord, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an order history repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) InsertRecords(ctx context.Context, records []models.OrderHistoryRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&records).Error
}

func (r *repository) newestFirst() *gorm.DB {
	return r.db.Order("ordered_at DESC").Order("id DESC")
}

func (r *repository) ListAll(ctx context.Context) ([]models.OrderHistoryRecord, error) {
	var records []models.OrderHistoryRecord
	if err := r.newestFirst().WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListPage returns up to limit rows strictly older than cursor.
func (r *repository) ListPage(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.OrderHistoryRecord, error) {
	query := r.newestFirst().WithContext(ctx)
	if cursor != nil {
		query = query.Where("ordered_at < ? OR (ordered_at = ? AND id < ?)", cursor.At, cursor.At, cursor.ID)
	}

	var records []models.OrderHistoryRecord
	if err := query.Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerKey string) ([]models.OrderHistoryRecord, error) {
	var records []models.OrderHistoryRecord
	if err := r.newestFirst().WithContext(ctx).
		Where("customer_key = ?", customerKey).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
