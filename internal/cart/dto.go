package cart

import (
	"github.com/angelmondragon/fastfood-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineDTO is the API shape of a cart line.
type LineDTO struct {
	ID        uuid.UUID       `json:"id"`
	ItemID    int64           `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// View summarizes a cart for display.
type View struct {
	Lines     []LineDTO       `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

func NewLineDTO(line models.CartLine) LineDTO {
	return LineDTO{
		ID:        line.ID,
		ItemID:    line.ItemID,
		Name:      line.Name,
		UnitPrice: line.UnitPrice,
		Quantity:  line.Quantity,
		Subtotal:  line.Subtotal(),
	}
}

// NewView builds the view from lines already in display order.
func NewView(lines []models.CartLine) *View {
	view := &View{Lines: make([]LineDTO, 0, len(lines)), Total: SumLines(lines)}
	for _, line := range lines {
		view.Lines = append(view.Lines, NewLineDTO(line))
		view.ItemCount += line.Quantity
	}
	return view
}
