package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-retail-pos.git/internal/auth"
	kafkax "github.com/ariefcatur/go-retail-pos.git/internal/kafka"
	"github.com/ariefcatur/go-retail-pos.git/internal/orders"
	"github.com/ariefcatur/go-retail-pos.git/internal/redisx"
)

type OrdersHandler struct {
	Service          *orders.Service
	CreatedProducer  *kafkax.Producer // topic pos.order.created
	ReversedProducer *kafkax.Producer // topic pos.order.reversed
	Redis            *redis.Client
	ServiceName      string
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.submit)
	r.Get("/orders/{id}", h.get)
	r.Post("/orders/{id}/reverse", h.reverse)
}

func (h *OrdersHandler) submit(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	if claims == nil {
		writeErr(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var in orders.SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	in.SalesPersonID = claims.Subject

	// kebijakan phone order: wajib alamat kirim. Ini urusan layer validasi,
	// bukan engine.
	if in.Type == orders.TypePhoneOrder && in.DeliveryAddress == "" {
		writeErr(w, http.StatusBadRequest, "delivery_address required for PHONE_ORDER")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Idempotency-Key opsional: submit ulang dengan key sama balikin order lama
	idemKey := ""
	if k := r.Header.Get("Idempotency-Key"); k != "" {
		idemKey = fmt.Sprintf(redisx.KeyIdemOrderSubmit, k)
		if h.Redis != nil {
			if prevID, err := h.Redis.Get(ctx, idemKey).Result(); err == nil && prevID != "" {
				if o, err := h.Service.Get(ctx, prevID); err == nil {
					writeJSON(w, http.StatusOK, o)
					return
				}
			}
		}
	}

	o, err := h.Service.Submit(ctx, in)
	if err != nil {
		writeOrderErr(w, err)
		return
	}

	if h.Redis != nil {
		if idemKey != "" {
			_ = h.Redis.Set(ctx, idemKey, o.ID, redisx.TTLIdempotency).Err()
		}
		h.cacheOrder(ctx, o)
	}
	h.publishCreated(o, r.Header.Get("X-Request-Id"))

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) coba cache
	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrder, orderID)
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	// 2) fallback DB
	o, err := h.Service.Get(ctx, orderID)
	if err != nil {
		writeOrderErr(w, err)
		return
	}
	if h.Redis != nil {
		h.cacheOrder(ctx, o)
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) reverse(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Service.Reverse(ctx, orderID)
	if err != nil {
		writeOrderErr(w, err)
		return
	}

	if h.Redis != nil {
		h.cacheOrder(ctx, o) // refresh cache dengan status REVERSED
	}
	h.publishReversed(o, r.Header.Get("X-Request-Id"))

	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cacheOrder(ctx context.Context, o *orders.Order) {
	key := fmt.Sprintf(redisx.KeyOrder, o.ID)
	if b, err := json.Marshal(o); err == nil {
		_ = h.Redis.Set(ctx, key, b, redisx.TTLOrderCache).Err()
	}
}

func (h *OrdersHandler) publishCreated(o *orders.Order, traceID string) {
	if h.CreatedProducer == nil {
		return
	}
	items := make([]orders.ItemPrice, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orders.ItemPrice{VariantID: it.VariantID, Qty: it.Qty, PriceCents: it.PriceCents})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.ServiceName,
		TraceID:       traceID,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderCreatedPayload{
			OrderID:       o.ID,
			InvoiceNo:     o.InvoiceNo,
			SalesPersonID: o.SalesPersonID,
			Items:         items,
			TotalCents:    o.TotalCents,
			CreatedAt:     o.CreatedAt,
		}),
	}
	h.CreatedProducer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) publishReversed(o *orders.Order, traceID string) {
	if h.ReversedProducer == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderReversed,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.ServiceName,
		TraceID:       traceID,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderReversedPayload{
			OrderID:    o.ID,
			InvoiceNo:  o.InvoiceNo,
			TotalCents: o.TotalCents,
			CreatedAt:  o.CreatedAt,
		}),
	}
	h.ReversedProducer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderReversed)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
