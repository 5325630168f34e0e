package cart

import (
	"context"
	"time"

	"github.com/angelmondragon/fastfood-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LineRepository defines the persistence surface required by the cart and checkout services.
type LineRepository interface {
	WithTx(tx *gorm.DB) LineRepository
	AddOrIncrement(ctx context.Context, line *models.CartLine) (*models.CartLine, error)
	ListByCartKey(ctx context.Context, cartKey string) ([]models.CartLine, error)
	LockByCartKey(ctx context.Context, cartKey string) ([]models.CartLine, error)
	DeleteLine(ctx context.Context, cartKey string, lineID uuid.UUID) (int64, error)
	DeleteSnapshot(ctx context.Context, cartKey string, lines []models.CartLine) (int64, error)
	DeleteByCartKey(ctx context.Context, cartKey string) (int64, error)
}

// Repository persists cart lines.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) LineRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx, now: r.now}
}

// AddOrIncrement inserts the line or, when the cart already holds the item,
// adds line.Quantity to the stored quantity in the same statement. The stored
// name and price are left untouched on increment.
func (r *Repository) AddOrIncrement(ctx context.Context, line *models.CartLine) (*models.CartLine, error) {
	now := r.now().UTC()
	line.CreatedAt = now
	line.UpdatedAt = now

	conn := r.db.WithContext(ctx)
	err := conn.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_key"}, {Name: "item_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("cart_lines.quantity + excluded.quantity"),
			"updated_at": now,
		}),
	}).Create(line).Error
	if err != nil {
		return nil, err
	}

	var stored models.CartLine
	if err := conn.Where("cart_key = ? AND item_id = ?", line.CartKey, line.ItemID).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// ListByCartKey returns lines in insertion order. Ids are UUIDv7, so lines
// created within the same clock tick still sort by id in creation order.
func (r *Repository) ListByCartKey(ctx context.Context, cartKey string) ([]models.CartLine, error) {
	return r.listByCartKey(r.db.WithContext(ctx), cartKey)
}

// LockByCartKey lists the lines with SELECT ... FOR UPDATE. Inside a
// transaction, increments of the returned rows wait until it ends. SQLite has
// no row locks and ignores the clause.
func (r *Repository) LockByCartKey(ctx context.Context, cartKey string) ([]models.CartLine, error) {
	return r.listByCartKey(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), cartKey)
}

func (r *Repository) listByCartKey(conn *gorm.DB, cartKey string) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := conn.
		Where("cart_key = ?", cartKey).
		Order("created_at ASC").
		Order("id ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *Repository) DeleteLine(ctx context.Context, cartKey string, lineID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("cart_key = ? AND id = ?", cartKey, lineID).
		Delete(&models.CartLine{})
	return res.RowsAffected, res.Error
}

// DeleteSnapshot removes the given lines only while each still holds the
// quantity it was read with. The returned count is short of len(lines) when
// any line was removed or incremented in the meantime.
func (r *Repository) DeleteSnapshot(ctx context.Context, cartKey string, lines []models.CartLine) (int64, error) {
	if len(lines) == 0 {
		return 0, nil
	}
	unchanged := r.db.Session(&gorm.Session{NewDB: true}).
		Where("id = ? AND quantity = ?", lines[0].ID, lines[0].Quantity)
	for _, line := range lines[1:] {
		unchanged = unchanged.Or("id = ? AND quantity = ?", line.ID, line.Quantity)
	}
	res := r.db.WithContext(ctx).
		Where("cart_key = ?", cartKey).
		Where(unchanged).
		Delete(&models.CartLine{})
	return res.RowsAffected, res.Error
}

func (r *Repository) DeleteByCartKey(ctx context.Context, cartKey string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("cart_key = ?", cartKey).
		Delete(&models.CartLine{})
	return res.RowsAffected, res.Error
}

// DeleteStaleGuestCarts removes every guest cart whose most recent change is
// older than cutoff. Signed-in carts are never touched.
func (r *Repository) DeleteStaleGuestCarts(ctx context.Context, cutoff time.Time) (int64, error) {
	stale := r.db.Model(&models.CartLine{}).
		Select("cart_key").
		Where("cart_key LIKE ?", guestKeyPrefix+"%").
		Group("cart_key").
		Having("MAX(updated_at) < ?", cutoff.UTC())
	res := r.db.WithContext(ctx).
		Where("cart_key IN (?)", stale).
		Delete(&models.CartLine{})
	return res.RowsAffected, res.Error
}
