package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
}

func setup(t *testing.T) (*MemStore, *Service) {
	t.Helper()
	store := NewMemStore()
	svc := &Service{Variants: store, Orders: store, Invoices: store, Now: fixedNow}
	return store, svc
}

func seedVariant(store *MemStore, id string, price int64, stock int) {
	store.PutVariant(SaleVariant{ID: id, ProductID: "p1", SKU: "SKU-" + id, PriceCents: price, Stock: stock})
}

func validInput(lines ...CartLine) SubmitInput {
	return SubmitInput{
		Lines:         lines,
		Type:          TypeInStore,
		Payment:       PayCash,
		SalesPersonID: "staff-1",
	}
}

func TestSubmitHappyPath(t *testing.T) {
	store, svc := setup(t)
	seedVariant(store, "v1", 1000, 5)

	o, err := svc.Submit(context.Background(), validInput(CartLine{VariantID: "v1", Qty: 3}))
	require.NoError(t, err)

	assert.Equal(t, int64(3000), o.TotalCents)
	assert.Equal(t, 2, store.StockOf("v1"))
	assert.Equal(t, StatusCreated, o.Status)
	assert.Equal(t, "INV-20260831-0001", o.InvoiceNo)
	assert.Equal(t, "staff-1", o.SalesPersonID)

	// conservation: total == sum subtotal, subtotal == price * qty
	require.Len(t, o.Items, 1)
	var sum int64
	for _, it := range o.Items {
		assert.Equal(t, it.PriceCents*int64(it.Qty), it.SubtotalCents)
		sum += it.SubtotalCents
	}
	assert.Equal(t, o.TotalCents, sum)
}

func TestSubmitMultiLineTotals(t *testing.T) {
	store, svc := setup(t)
	seedVariant(store, "v1", 1000, 5)
	seedVariant(store, "v2", 2550, 4)

	o, err := svc.Submit(context.Background(), validInput(
		CartLine{VariantID: "v1", Qty: 2},
		CartLine{VariantID: "v2", Qty: 3},
	))
	require.NoError(t, err)
	assert.Equal(t, int64(2*1000+3*2550), o.TotalCents)
	assert.Equal(t, 3, store.StockOf("v1"))
	assert.Equal(t, 1, store.StockOf("v2"))
	assert.Len(t, o.Items, 2)
}

func TestSubmitValidation(t *testing.T) {
	store, svc := setup(t)
	seedVariant(store, "v1", 1000, 5)

	cases := []struct {
		name string
		in   SubmitInput
	}{
		{"empty cart", validInput()},
		{"zero qty", validInput(CartLine{VariantID: "v1", Qty: 0})},
		{"negative qty", validInput(CartLine{VariantID: "v1", Qty: -2})},
		{"duplicate variant", validInput(CartLine{VariantID: "v1", Qty: 1}, CartLine{VariantID: "v1", Qty: 2})},
		{"missing variant id", validInput(CartLine{Qty: 1})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tc.in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
		})
	}

	badType := validInput(CartLine{VariantID: "v1", Qty: 1})
	badType.Type = "DRIVE_THRU"
	_, err := svc.Submit(context.Background(), badType)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	badPay := validInput(CartLine{VariantID: "v1", Qty: 1})
	badPay.Payment = "CHECK"
	_, err = svc.Submit(context.Background(), badPay)
	require.ErrorAs(t, err, &ve)

	// tidak ada row nyangkut & stok utuh
	assert.Equal(t, 0, store.OrderCount())
	assert.Equal(t, 0, store.ItemCount())
	assert.Equal(t, 5, store.StockOf("v1"))
}

func TestSubmitUnknownVariant(t *testing.T) {
	store, svc := setup(t)
	seedVariant(store, "v1", 1000, 5)

	_, err := svc.Submit(context.Background(), validInput(
		CartLine{VariantID: "v1", Qty: 1},
		CartLine{VariantID: "ghost", Qty: 1},
	))
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, []string{"ghost"}, nf.IDs)

	assert.Equal(t, 0, store.OrderCount())
	assert.Equal(t, 0, store.ItemCount())
	assert.Equal(t, 5, store.StockOf("v1"))
}

func TestSubmitInsufficientStock(t *testing.T) {
	store, svc := setup(t)
	seedVariant(store, "v1", 1000, 2)

	_, err := svc.Submit(context.Background(), validInput(CartLine{VariantID: "v1", Qty: 3}))
	var is *InsufficientStockError
	require.ErrorAs(t, err, &is)
	require.Len(t, is.Details, 1)
	assert.Equal(t, "v1", is.Details[0].VariantID)
	assert.Equal(t, 3, is.Details[0].Requested)
	assert.Equal(t, 2, is.Details[0].Available)

	assert.Equal(t, 2, store.StockOf("v1"))
	assert.Equal(t, 0, store.OrderCount())
}

func TestSubmitConcurrentSameVariant(t *testing.T) {
	store, svc := setup(t)
	seedVariant(store, "v1", 1000, 5)

	// dua submit paralel minta 3 dari stok 5: tepat satu yang boleh menang
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(context.Background(), validInput(CartLine{VariantID: "v1", Qty: 3}))
		}(i)
	}
	wg.Wait()

	okCount := 0
	for _, err := range errs {
		if err == nil {
			okCount++
		} else {
			var is *InsufficientStockError
			require.ErrorAs(t, err, &is)
		}
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 2, store.StockOf("v1"))
	assert.Equal(t, 1, store.OrderCount())
}

// inflatedStore bikin snapshot kelihatan lebih gendut dari stok asli,
// simulasi order lain yang menyerobot di antara validasi dan decrement.
type inflatedStore struct{ *MemStore }

func (s *inflatedStore) GetForSale(ctx context.Context, ids []string) ([]SaleVariant, error) {
	vs, err := s.MemStore.GetForSale(ctx, ids)
	for i := range vs {
		vs[i].Stock += 10
	}
	return vs, err
}

func TestSubmitLateConflictRollsBack(t *testing.T) {
	store := NewMemStore()
	seedVariant(store, "v1", 1000, 5)
	seedVariant(store, "v2", 2000, 1)
	svc := &Service{Variants: &inflatedStore{store}, Orders: store, Invoices: store, Now: fixedNow}

	// v2 lolos validasi (snapshot bohong) tapi gagal di decrement
	_, err := svc.Submit(context.Background(), validInput(
		CartLine{VariantID: "v1", Qty: 2},
		CartLine{VariantID: "v2", Qty: 5},
	))
	var is *InsufficientStockError
	require.ErrorAs(t, err, &is)

	// decrement v1 yang sudah jalan harus dibalikin, rows bersih
	assert.Equal(t, 5, store.StockOf("v1"))
	assert.Equal(t, 1, store.StockOf("v2"))
	assert.Equal(t, 0, store.OrderCount())
	assert.Equal(t, 0, store.ItemCount())
}

type failingOrderStore struct {
	Store
	failInsertOrder bool
	failInsertItems bool
	failGetOrder    bool
}

func (f *failingOrderStore) InsertOrder(ctx context.Context, o *Order) error {
	if f.failInsertOrder {
		return errors.New("insert order boom")
	}
	return f.Store.InsertOrder(ctx, o)
}

func (f *failingOrderStore) InsertItems(ctx context.Context, items []OrderItem) error {
	if f.failInsertItems {
		return errors.New("insert items boom")
	}
	return f.Store.InsertItems(ctx, items)
}

func (f *failingOrderStore) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	if f.failGetOrder {
		return nil, errors.New("read back boom")
	}
	return f.Store.GetOrder(ctx, orderID)
}

func TestSubmitAtomicityOnStoreFailure(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*failingOrderStore)
	}{
		{"header insert fails", func(f *failingOrderStore) { f.failInsertOrder = true }},
		{"items insert fails", func(f *failingOrderStore) { f.failInsertItems = true }},
		{"read back fails", func(f *failingOrderStore) { f.failGetOrder = true }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewMemStore()
			seedVariant(store, "v1", 1000, 5)
			fs := &failingOrderStore{Store: store}
			tc.mut(fs)
			svc := &Service{Variants: store, Orders: fs, Invoices: store, Now: fixedNow}

			_, err := svc.Submit(context.Background(), validInput(CartLine{VariantID: "v1", Qty: 3}))
			var pe *PersistenceError
			require.ErrorAs(t, err, &pe)

			// nol efek tersisa
			assert.Equal(t, 5, store.StockOf("v1"))
			assert.Equal(t, 0, store.OrderCount())
			assert.Equal(t, 0, store.ItemCount())
		})
	}
}

// partialItemStore nulis sebagian item dulu baru gagal, simulasi batch insert
// yang mati di tengah jalan.
type partialItemStore struct{ Store }

func (p *partialItemStore) InsertItems(ctx context.Context, items []OrderItem) error {
	_ = p.Store.InsertItems(ctx, items[:1])
	return errors.New("insert items boom")
}

func TestSubmitPartialItemInsertRollsBack(t *testing.T) {
	store := NewMemStore()
	seedVariant(store, "v1", 1000, 5)
	seedVariant(store, "v2", 2000, 3)
	svc := &Service{Variants: store, Orders: &partialItemStore{store}, Invoices: store, Now: fixedNow}

	_, err := svc.Submit(context.Background(), validInput(
		CartLine{VariantID: "v1", Qty: 1},
		CartLine{VariantID: "v2", Qty: 1},
	))
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)

	// item yang keburu masuk harus ikut dihapus, bukan cuma headernya
	assert.Equal(t, 0, store.ItemCount())
	assert.Equal(t, 0, store.OrderCount())
	assert.Equal(t, 5, store.StockOf("v1"))
	assert.Equal(t, 3, store.StockOf("v2"))
}

func TestPriceSnapshotImmutable(t *testing.T) {
	store, svc := setup(t)
	seedVariant(store, "v1", 1000, 5)

	o, err := svc.Submit(context.Background(), validInput(CartLine{VariantID: "v1", Qty: 2}))
	require.NoError(t, err)

	// harga naik setelah order dibuat
	store.PutVariant(SaleVariant{ID: "v1", ProductID: "p1", SKU: "SKU-v1", PriceCents: 9999, Stock: 3})

	got, err := svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(1000), got.Items[0].PriceCents)
	assert.Equal(t, int64(2000), got.Items[0].SubtotalCents)
	assert.Equal(t, int64(2000), got.TotalCents)
}

func TestInvoiceUniqueUnderConcurrency(t *testing.T) {
	store, svc := setup(t)
	seedVariant(store, "v1", 100, 1000)

	const n = 50
	var wg sync.WaitGroup
	invoices := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o, err := svc.Submit(context.Background(), validInput(CartLine{VariantID: "v1", Qty: 1}))
			if err == nil {
				invoices[i] = o.InvoiceNo
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, inv := range invoices {
		require.NotEmpty(t, inv)
		require.False(t, seen[inv], "duplicate invoice %s", inv)
		seen[inv] = true
	}
	assert.Equal(t, 1000-n, store.StockOf("v1"))
}

func TestReverseRoundTrip(t *testing.T) {
	store, svc := setup(t)
	seedVariant(store, "v1", 1000, 5)
	seedVariant(store, "v2", 500, 8)

	o, err := svc.Submit(context.Background(), validInput(
		CartLine{VariantID: "v1", Qty: 3},
		CartLine{VariantID: "v2", Qty: 2},
	))
	require.NoError(t, err)
	require.Equal(t, 2, store.StockOf("v1"))
	require.Equal(t, 6, store.StockOf("v2"))

	rev, err := svc.Reverse(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReversed, rev.Status)

	// stok kembali ke nilai sebelum order; rows tetap ada untuk audit
	assert.Equal(t, 5, store.StockOf("v1"))
	assert.Equal(t, 8, store.StockOf("v2"))
	assert.Equal(t, 1, store.OrderCount())

	// reversal kedua ditolak, stok tidak dobel balik
	_, err = svc.Reverse(context.Background(), o.ID)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 5, store.StockOf("v1"))
}

func TestReverseMissingVariantBestEffort(t *testing.T) {
	store, svc := setup(t)
	seedVariant(store, "v1", 1000, 5)
	seedVariant(store, "v2", 500, 8)

	o, err := svc.Submit(context.Background(), validInput(
		CartLine{VariantID: "v1", Qty: 1},
		CartLine{VariantID: "v2", Qty: 2},
	))
	require.NoError(t, err)

	// v1 dihapus dari katalog; reversal tetap harus balikin stok v2
	store.DeleteVariant("v1")

	rev, err := svc.Reverse(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReversed, rev.Status)
	assert.Equal(t, 8, store.StockOf("v2"))
}

func TestReverseUnknownOrder(t *testing.T) {
	_, svc := setup(t)
	_, err := svc.Reverse(context.Background(), "nope")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestFormatInvoice(t *testing.T) {
	day := time.Date(2026, 1, 5, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "INV-20260105-0007", FormatInvoice(day, 7))
	assert.Equal(t, "INV-20260105-12345", FormatInvoice(day, 12345))
}

func TestConcurrentDisjointVariants(t *testing.T) {
	store, svc := setup(t)
	const n = 20
	for i := 0; i < n; i++ {
		seedVariant(store, fmt.Sprintf("v%d", i), 100, 10)
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), validInput(CartLine{VariantID: fmt.Sprintf("v%d", i), Qty: 4}))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		assert.Equal(t, 6, store.StockOf(fmt.Sprintf("v%d", i)))
	}
	assert.Equal(t, n, store.OrderCount())
}
