package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-retail-pos.git/internal/kafka"
	"github.com/ariefcatur/go-retail-pos.git/internal/orders"
	"github.com/ariefcatur/go-retail-pos.git/internal/redisx"
)

// Rollup: consumer side reporting. Dengar order.created / order.reversed dan
// maintain agregat harian di sales_daily.
type Rollup struct {
	DB    *pgxpool.Pool
	Redis *redis.Client
}

// HandleOrderEvent dipasang sebagai handler consumer untuk dua topic sekaligus.
func (r *Rollup) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// payload rusak tidak akan membaik kalau diretry; log lalu commit
		slog.Error("rollup: bad envelope", "err", err)
		return nil
	}

	// dedup via redis (pakai event_id); consumer bisa kebagian redelivery
	dkey := fmt.Sprintf(redisx.KeyDedup, "reporting", env.EventID)
	if exists, _ := redisx.Exists(ctx, r.Redis, dkey); exists {
		return nil
	}

	var err error
	switch env.EventType {
	case orders.EventOrderCreated:
		p, perr := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if perr != nil {
			slog.Error("rollup: bad payload", "event", env.EventType, "err", perr)
			return nil
		}
		err = r.apply(ctx, p.CreatedAt.Format("2006-01-02"), 1, p.TotalCents)
	case orders.EventOrderReversed:
		p, perr := kafkax.UnwrapPayload[orders.OrderReversedPayload](env.Payload)
		if perr != nil {
			slog.Error("rollup: bad payload", "event", env.EventType, "err", perr)
			return nil
		}
		err = r.apply(ctx, p.CreatedAt.Format("2006-01-02"), -1, -p.TotalCents)
	default:
		return nil // ignore
	}
	if err != nil {
		return err
	}

	_ = r.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	return nil
}

func (r *Rollup) apply(ctx context.Context, day string, dOrders int, dTotal int64) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO sales_daily(day, orders, total_cents)
		VALUES ($1, $2, $3)
		ON CONFLICT (day) DO UPDATE
		SET orders = sales_daily.orders + EXCLUDED.orders,
		    total_cents = sales_daily.total_cents + EXCLUDED.total_cents`,
		day, dOrders, dTotal)
	return err
}
