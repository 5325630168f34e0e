package orders

import (
	"time"

	"github.com/angelmondragon/fastfood-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordDTO is the API shape of one order history row.
type RecordDTO struct {
	ID           uuid.UUID       `json:"id"`
	ItemID       int64           `json:"item_id"`
	ItemName     string          `json:"item_name"`
	CustomerName string          `json:"customer_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
	OrderedAt    time.Time       `json:"ordered_at"`
}

func NewRecordDTO(r models.OrderHistoryRecord) RecordDTO {
	return RecordDTO{
		ID:           r.ID,
		ItemID:       r.ItemID,
		ItemName:     r.ItemName,
		CustomerName: r.CustomerName,
		Quantity:     r.Quantity,
		UnitPrice:    r.UnitPrice,
		LineTotal:    r.LineTotal(),
		OrderedAt:    r.OrderedAt,
	}
}

func newRecordDTOs(records []models.OrderHistoryRecord) []RecordDTO {
	out := make([]RecordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, NewRecordDTO(r))
	}
	return out
}
