package orders

import "time"

type OrderType string

const (
	TypeInStore    OrderType = "IN_STORE"
	TypePhoneOrder OrderType = "PHONE_ORDER"
)

func (t OrderType) Valid() bool { return t == TypeInStore || t == TypePhoneOrder }

type PaymentMethod string

const (
	PayCash     PaymentMethod = "CASH"
	PayMomo     PaymentMethod = "MOMO"
	PayTransfer PaymentMethod = "TRANSFER"
)

func (p PaymentMethod) Valid() bool {
	return p == PayCash || p == PayMomo || p == PayTransfer
}

type Status string

const (
	StatusCreated  Status = "CREATED"
	StatusReversed Status = "REVERSED"
)

type Order struct {
	ID              string        `json:"id"`
	InvoiceNo       string        `json:"invoice_no"`
	SalesPersonID   string        `json:"sales_person_id"`
	Type            OrderType     `json:"order_type"`
	Payment         PaymentMethod `json:"payment_method"`
	Status          Status        `json:"status"`
	TotalCents      int64         `json:"total_cents"`
	CustomerName    string        `json:"customer_name,omitempty"`
	CustomerPhone   string        `json:"customer_phone,omitempty"`
	DeliveryAddress string        `json:"delivery_address,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	Items           []OrderItem   `json:"items"`
}

// OrderItem menyimpan snapshot harga saat order dibuat; perubahan harga
// variant setelahnya tidak boleh mengubah baris ini.
type OrderItem struct {
	ID            string `json:"id"`
	OrderID       string `json:"order_id"`
	VariantID     string `json:"variant_id"`
	Qty           int    `json:"qty"`
	PriceCents    int64  `json:"price_cents"`
	SubtotalCents int64  `json:"subtotal_cents"`
}

// SaleVariant: pandangan engine atas variant, harga sudah harga efektif
// (SP aktif kalau ada, kalau tidak harga normal).
type SaleVariant struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	SKU        string `json:"sku"`
	PriceCents int64  `json:"price_cents"`
	Stock      int    `json:"stock"`
}

type CartLine struct {
	VariantID string `json:"variant_id"`
	Qty       int    `json:"qty"`
}

type SubmitInput struct {
	Lines           []CartLine    `json:"items"`
	Type            OrderType     `json:"order_type"`
	Payment         PaymentMethod `json:"payment_method"`
	CustomerName    string        `json:"customer_name"`
	CustomerPhone   string        `json:"customer_phone"`
	DeliveryAddress string        `json:"delivery_address"`
	SalesPersonID   string        `json:"-"`
}
