package events

import (
	"encoding/json"
	"time"

	"github.com/Johnnyadee/group15-simple-inventory-system/pkg/messaging"
)

// StockLowEvent is emitted after a mutation leaves a product at or below
// its reorder level.
type StockLowEvent struct {
	ProductID    int64     `json:"product_id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	Stock        int       `json:"stock"`
	ReorderLevel int       `json:"reorder_level"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func (e StockLowEvent) Subject() string {
	return messaging.StockLowSubject
}

func (e StockLowEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
