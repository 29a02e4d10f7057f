package catalog

import "time"

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID          string    `json:"id"`
	CategoryID  *string   `json:"category_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Variant struct {
	ID         string            `json:"id"`
	ProductID  string            `json:"product_id"`
	SKU        string            `json:"sku"`
	Size       string            `json:"size,omitempty"`
	Color      string            `json:"color,omitempty"`
	PriceCents int64             `json:"price_cents"`
	Stock      int               `json:"stock_quantity"`
	Attributes map[string]string `json:"attributes,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// SPGroup: grup harga spesial dengan window aktif. Harga member menggantikan
// harga normal variant selama window berjalan.
type SPGroup struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Items    []SPItem  `json:"items,omitempty"`
}

type SPItem struct {
	VariantID  string `json:"variant_id"`
	PriceCents int64  `json:"price_cents"`
}
