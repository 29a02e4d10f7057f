package orders

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo: Store + InvoiceSequence di atas postgres. Engine sengaja tidak
// membungkus semua step dalam satu tx — konsistensi dijaga lewat kompensasi
// di service + conditional update di variant store.
type Repo struct{ DB *pgxpool.Pool }

var _ Store = (*Repo)(nil)
var _ InvoiceSequence = (*Repo)(nil)

func (r *Repo) InsertOrder(ctx context.Context, o *Order) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO orders(id, invoice_no, sales_person_id, order_type, payment_method,
		                   status, total_cents, customer_name, customer_phone, delivery_address, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		o.ID, o.InvoiceNo, o.SalesPersonID, o.Type, o.Payment,
		o.Status, o.TotalCents, o.CustomerName, o.CustomerPhone, o.DeliveryAddress, o.CreatedAt,
	)
	return err
}

func (r *Repo) InsertItems(ctx context.Context, items []OrderItem) error {
	for _, it := range items {
		_, err := r.DB.Exec(ctx, `
			INSERT INTO order_items(id, order_id, variant_id, qty, price_cents, subtotal_cents)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			it.ID, it.OrderID, it.VariantID, it.Qty, it.PriceCents, it.SubtotalCents,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) DeleteItems(ctx context.Context, orderID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, orderID)
	return err
}

func (r *Repo) DeleteOrder(ctx context.Context, orderID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id=$1`, orderID)
	return err
}

func (r *Repo) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		SELECT id, invoice_no, sales_person_id, order_type, payment_method,
		       status, total_cents, customer_name, customer_phone, delivery_address, created_at
		FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.InvoiceNo, &o.SalesPersonID, &o.Type, &o.Payment,
			&o.Status, &o.TotalCents, &o.CustomerName, &o.CustomerPhone, &o.DeliveryAddress, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, variant_id, qty, price_cents, subtotal_cents
		FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.VariantID, &it.Qty, &it.PriceCents, &it.SubtotalCents); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) MarkReversed(ctx context.Context, orderID string) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status='REVERSED' WHERE id=$1 AND status='CREATED'`, orderID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// Next: counter per hari, naik atomik di sisi DB. Dua submit paralel di hari
// yang sama dijamin dapat serial berbeda.
func (r *Repo) Next(ctx context.Context, day time.Time) (int, error) {
	var seq int
	err := r.DB.QueryRow(ctx, `
		INSERT INTO invoice_counters(day, last_seq) VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET last_seq = invoice_counters.last_seq + 1
		RETURNING last_seq`, day.Format("2006-01-02")).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}
