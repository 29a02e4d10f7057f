package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-retail-pos.git/internal/redisx"
)

type SalesSummary struct {
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	Orders     int       `json:"orders"`
	TotalCents int64     `json:"total_cents"`
}

type TopVariant struct {
	VariantID  string `json:"variant_id"`
	SKU        string `json:"sku,omitempty"`
	Qty        int    `json:"qty"`
	TotalCents int64  `json:"total_cents"`
}

type LowStockVariant struct {
	VariantID string `json:"variant_id"`
	SKU       string `json:"sku"`
	Stock     int    `json:"stock"`
}

type Dashboard struct {
	Sales    SalesSummary      `json:"sales"`
	Top      []TopVariant      `json:"top_variants"`
	LowStock []LowStockVariant `json:"low_stock"`
}

type Service struct {
	DB       *pgxpool.Pool
	Redis    *redis.Client
	CacheTTL time.Duration
}

// SalesSummary hanya menghitung order berstatus CREATED; order yang sudah
// direverse keluar dari angka penjualan.
func (s *Service) SalesSummary(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	key := fmt.Sprintf(redisx.KeyReportSales, from.Format("20060102"), to.Format("20060102"))
	if s.Redis != nil {
		if b, err := s.Redis.Get(ctx, key).Bytes(); err == nil {
			var cached SalesSummary
			if json.Unmarshal(b, &cached) == nil {
				return &cached, nil
			}
		}
	}

	out := SalesSummary{From: from, To: to}
	err := s.DB.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_cents), 0)
		FROM orders
		WHERE status='CREATED' AND created_at >= $1 AND created_at < $2`,
		from, to).Scan(&out.Orders, &out.TotalCents)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if b, err := json.Marshal(out); err == nil {
			_ = s.Redis.Set(ctx, key, b, s.CacheTTL).Err()
		}
	}
	return &out, nil
}

func (s *Service) TopVariants(ctx context.Context, from, to time.Time, limit int) ([]TopVariant, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := s.DB.Query(ctx, `
		SELECT i.variant_id, COALESCE(v.sku, ''), SUM(i.qty), SUM(i.subtotal_cents)
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		LEFT JOIN product_variants v ON v.id = i.variant_id
		WHERE o.status='CREATED' AND o.created_at >= $1 AND o.created_at < $2
		GROUP BY i.variant_id, v.sku
		ORDER BY SUM(i.qty) DESC
		LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TopVariant
	for rows.Next() {
		var t TopVariant
		if err := rows.Scan(&t.VariantID, &t.SKU, &t.Qty, &t.TotalCents); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Service) LowStock(ctx context.Context, threshold int) ([]LowStockVariant, error) {
	if threshold <= 0 {
		threshold = 5
	}
	rows, err := s.DB.Query(ctx, `
		SELECT id, sku, stock_quantity
		FROM product_variants
		WHERE stock_quantity <= $1
		ORDER BY stock_quantity, sku`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LowStockVariant
	for rows.Next() {
		var v LowStockVariant
		if err := rows.Scan(&v.VariantID, &v.SKU, &v.Stock); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Dashboard gabungkan tiga report sekali request; query jalan paralel karena
// tidak saling tergantung.
func (s *Service) Dashboard(ctx context.Context, from, to time.Time, limit, threshold int) (*Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sum, err := s.SalesSummary(gctx, from, to)
		if err == nil {
			d.Sales = *sum
		}
		return err
	})
	g.Go(func() error {
		top, err := s.TopVariants(gctx, from, to, limit)
		if err == nil {
			d.Top = top
		}
		return err
	})
	g.Go(func() error {
		low, err := s.LowStock(gctx, threshold)
		if err == nil {
			d.LowStock = low
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
