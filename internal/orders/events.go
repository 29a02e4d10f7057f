package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated  = "OrderCreated"
	EventOrderReversed = "OrderReversed"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "pos-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type ItemPrice struct {
	VariantID  string `json:"variant_id"`
	Qty        int    `json:"qty"`
	PriceCents int64  `json:"price_cents"`
}

type OrderCreatedPayload struct {
	OrderID       string      `json:"order_id"`
	InvoiceNo     string      `json:"invoice_no"`
	SalesPersonID string      `json:"sales_person_id"`
	Items         []ItemPrice `json:"items"`
	TotalCents    int64       `json:"total_cents"`
	CreatedAt     time.Time   `json:"created_at"`
}

type OrderReversedPayload struct {
	OrderID    string    `json:"order_id"`
	InvoiceNo  string    `json:"invoice_no"`
	TotalCents int64     `json:"total_cents"`
	CreatedAt  time.Time `json:"created_at"` // waktu order aslinya, buat rollup harian
}
