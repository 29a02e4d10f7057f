package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-retail-pos.git/internal/orders"
)

// SaleStore: variant store untuk order engine. Harga yang dikembalikan sudah
// harga efektif (SP aktif menang atas harga normal), dan mutasi stok cuma
// lewat conditional / additive update — tidak pernah overwrite.
type SaleStore struct{ DB *pgxpool.Pool }

var _ orders.VariantStore = (*SaleStore)(nil)

func (s *SaleStore) GetForSale(ctx context.Context, ids []string) ([]orders.SaleVariant, error) {
	// id yang bukan uuid pasti tidak ada di tabel; dibuang di sini supaya
	// cast uuid[] tidak error dan caller melihatnya sebagai variant hilang
	valid := validUUIDs(ids)
	if len(valid) == 0 {
		return []orders.SaleVariant{}, nil
	}
	rows, err := s.DB.Query(ctx, `
		SELECT v.id, v.product_id, v.sku,
		       COALESCE(sp.price_cents, v.price_cents) AS price_cents,
		       v.stock_quantity
		FROM product_variants v
		LEFT JOIN LATERAL (
			SELECT i.price_cents
			FROM sp_group_items i
			JOIN sp_groups g ON g.id = i.group_id
			WHERE i.variant_id = v.id
			  AND now() >= g.starts_at AND now() < g.ends_at
			ORDER BY i.price_cents ASC
			LIMIT 1
		) sp ON true
		WHERE v.id = ANY($1::uuid[])`, valid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]orders.SaleVariant, 0, len(ids))
	for rows.Next() {
		var v orders.SaleVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.PriceCents, &v.Stock); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// TryDecrementStock: "kurangi N kalau stok masih >= N" dalam satu statement.
// RowsAffected 0 berarti stoknya keburu dimakan order lain.
func (s *SaleStore) TryDecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	ct, err := s.DB.Exec(ctx, `
		UPDATE product_variants
		SET stock_quantity = stock_quantity - $2, updated_at = now()
		WHERE id = $1 AND stock_quantity >= $2`, id, qty)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func validUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if uuid.Validate(id) == nil {
			out = append(out, id)
		}
	}
	return out
}

func (s *SaleStore) AddStock(ctx context.Context, id string, qty int) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE product_variants
		SET stock_quantity = stock_quantity + $2, updated_at = now()
		WHERE id = $1`, id, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
