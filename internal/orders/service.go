package orders

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

var ErrOrderNotFound = errors.New("order not found")

// VariantStore: akses stok & harga. Stok hanya boleh berubah lewat primitive
// conditional (TryDecrementStock) atau additive (AddStock), tidak pernah
// overwrite langsung — itu yang mencegah lost update antar order paralel.
type VariantStore interface {
	GetForSale(ctx context.Context, ids []string) ([]SaleVariant, error)
	TryDecrementStock(ctx context.Context, id string, qty int) (bool, error)
	AddStock(ctx context.Context, id string, qty int) error
}

type Store interface {
	InsertOrder(ctx context.Context, o *Order) error
	InsertItems(ctx context.Context, items []OrderItem) error
	DeleteItems(ctx context.Context, orderID string) error
	DeleteOrder(ctx context.Context, orderID string) error
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	// MarkReversed flip status CREATED -> REVERSED, return false kalau
	// status sudah bukan CREATED (guard double reversal).
	MarkReversed(ctx context.Context, orderID string) (bool, error)
}

type InvoiceSequence interface {
	Next(ctx context.Context, day time.Time) (int, error)
}

type Service struct {
	Variants VariantStore
	Orders   Store
	Invoices InvoiceSequence
	Now      func() time.Time // bisa dioverride di test
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Submit menjalankan transaksi order sebagai saga eksplisit:
// fetch snapshot -> validasi & hitung total -> invoice -> header -> items ->
// potong stok per variant (conditional). Tiap step tulis punya kompensasi;
// kalau gagal di tengah, semua yang sudah ditulis dibalikin dulu baru error
// aslinya dikembalikan.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Order, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	// 1) batch fetch semua variant sekali jalan
	ids := make([]string, 0, len(in.Lines))
	for _, l := range in.Lines {
		ids = append(ids, l.VariantID)
	}
	variants, err := s.Variants.GetForSale(ctx, ids)
	if err != nil {
		return nil, persistence("fetch variants", err)
	}
	if len(variants) != len(ids) {
		byID := make(map[string]bool, len(variants))
		for _, v := range variants {
			byID[v.ID] = true
		}
		var missing []string
		for _, id := range ids {
			if !byID[id] {
				missing = append(missing, id)
			}
		}
		return nil, &NotFoundError{Entity: "variant", IDs: missing}
	}

	// 2) validasi stok terhadap snapshot + hitung total.
	// Cek ini cuma fail-fast; kebenaran final ada di step decrement.
	snapshot := make(map[string]SaleVariant, len(variants))
	for _, v := range variants {
		snapshot[v.ID] = v
	}
	now := s.now()
	orderID := uuid.NewString()
	var total int64
	var shortages []StockShortage
	items := make([]OrderItem, 0, len(in.Lines))
	for _, l := range in.Lines {
		v := snapshot[l.VariantID]
		if l.Qty > v.Stock {
			shortages = append(shortages, StockShortage{
				VariantID: v.ID, Requested: l.Qty, Available: v.Stock,
			})
			continue
		}
		sub := v.PriceCents * int64(l.Qty)
		total += sub
		items = append(items, OrderItem{
			ID:            uuid.NewString(),
			OrderID:       orderID,
			VariantID:     v.ID,
			Qty:           l.Qty,
			PriceCents:    v.PriceCents,
			SubtotalCents: sub,
		})
	}
	if len(shortages) > 0 {
		return nil, &InsufficientStockError{Details: shortages}
	}

	// 3) nomor invoice dari counter atomik per hari
	seq, err := s.Invoices.Next(ctx, now)
	if err != nil {
		return nil, persistence("next invoice", err)
	}

	order := &Order{
		ID:              orderID,
		InvoiceNo:       FormatInvoice(now, seq),
		SalesPersonID:   in.SalesPersonID,
		Type:            in.Type,
		Payment:         in.Payment,
		Status:          StatusCreated,
		TotalCents:      total,
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		DeliveryAddress: in.DeliveryAddress,
		CreatedAt:       now,
	}

	// 4) header dulu; gagal di sini belum ada yang perlu dikompensasi
	if err := s.Orders.InsertOrder(ctx, order); err != nil {
		return nil, persistence("insert order", err)
	}

	// 5) items; kalau gagal di tengah batch, item yang sudah masuk ikut
	// dihapus bersama header
	if err := s.Orders.InsertItems(ctx, items); err != nil {
		s.undoOrderRows(ctx, orderID)
		return nil, persistence("insert items", err)
	}

	// 6) potong stok per variant, conditional terhadap nilai live.
	// Konflik di sini berarti order lain keburu makan stoknya.
	for i, it := range items {
		ok, derr := s.Variants.TryDecrementStock(ctx, it.VariantID, it.Qty)
		if derr != nil || !ok {
			s.undoDecrements(ctx, items[:i])
			s.undoOrderRows(ctx, orderID)
			if derr != nil {
				return nil, persistence("decrement stock", derr)
			}
			return nil, &InsufficientStockError{Details: []StockShortage{{
				VariantID: it.VariantID,
				Requested: it.Qty,
				Available: s.currentStock(ctx, it.VariantID),
			}}}
		}
	}

	// 7) read-back supaya caller dapat view yang sudah confirmed.
	// Gagal baca balik diperlakukan sama dengan gagal tulis: caller dapat
	// error, jadi tidak boleh ada efek yang nyangkut diam-diam.
	out, err := s.Orders.GetOrder(ctx, orderID)
	if err != nil {
		s.undoDecrements(ctx, items)
		s.undoOrderRows(ctx, orderID)
		return nil, persistence("read back order", err)
	}
	return out, nil
}

// Reverse mengembalikan stok yang dimakan sebuah order. Flip status duluan
// sebagai guard; baris order & items tetap disimpan untuk audit.
func (s *Service) Reverse(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.Orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, &NotFoundError{Entity: "order", IDs: []string{orderID}}
		}
		return nil, persistence("get order", err)
	}
	if o.Status == StatusReversed {
		return nil, validationf("order %s already reversed", orderID)
	}

	ok, err := s.Orders.MarkReversed(ctx, orderID)
	if err != nil {
		return nil, persistence("mark reversed", err)
	}
	if !ok {
		// kalah race dengan reversal lain
		return nil, validationf("order %s already reversed", orderID)
	}

	// best-effort per item: variant yang sudah dihapus tidak boleh
	// memblokir pengembalian stok item lainnya
	for _, it := range o.Items {
		if err := s.Variants.AddStock(ctx, it.VariantID, it.Qty); err != nil {
			slog.Warn("restore stock skipped", "order_id", orderID, "variant_id", it.VariantID, "err", err)
		}
	}

	o.Status = StatusReversed
	return o, nil
}

func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.Orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, &NotFoundError{Entity: "order", IDs: []string{orderID}}
		}
		return nil, persistence("get order", err)
	}
	return o, nil
}

func validateInput(in SubmitInput) error {
	if len(in.Lines) == 0 {
		return validationf("cart is empty")
	}
	seen := make(map[string]bool, len(in.Lines))
	for _, l := range in.Lines {
		if l.VariantID == "" {
			return validationf("missing variant_id")
		}
		if l.Qty <= 0 {
			return validationf("invalid qty for variant %s", l.VariantID)
		}
		// engine tidak merge duplikat; caller wajib pre-aggregate
		if seen[l.VariantID] {
			return validationf("duplicate variant %s in cart", l.VariantID)
		}
		seen[l.VariantID] = true
	}
	if !in.Type.Valid() {
		return validationf("invalid order_type %q", string(in.Type))
	}
	if !in.Payment.Valid() {
		return validationf("invalid payment_method %q", string(in.Payment))
	}
	if in.SalesPersonID == "" {
		return validationf("missing sales person")
	}
	return nil
}

// undoDecrements balikin stok yang terlanjur dipotong untuk order yang gagal.
// Error kompensasi cuma dilog, tidak boleh menutupi error aslinya.
func (s *Service) undoDecrements(ctx context.Context, done []OrderItem) {
	for _, it := range done {
		if err := s.Variants.AddStock(ctx, it.VariantID, it.Qty); err != nil {
			slog.Error("compensation failed: restore stock", "variant_id", it.VariantID, "qty", it.Qty, "err", err)
		}
	}
}

func (s *Service) undoOrderRows(ctx context.Context, orderID string) {
	if err := s.Orders.DeleteItems(ctx, orderID); err != nil {
		slog.Error("compensation failed: delete items", "order_id", orderID, "err", err)
	}
	if err := s.Orders.DeleteOrder(ctx, orderID); err != nil {
		slog.Error("compensation failed: delete order header", "order_id", orderID, "err", err)
	}
}

func (s *Service) currentStock(ctx context.Context, variantID string) int {
	vs, err := s.Variants.GetForSale(ctx, []string{variantID})
	if err != nil || len(vs) == 0 {
		return 0
	}
	return vs[0].Stock
}
