package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidUUIDs(t *testing.T) {
	good := uuid.NewString()
	got := validUUIDs([]string{good, "ghost", "", "not-a-uuid"})
	assert.Equal(t, []string{good}, got)

	assert.Empty(t, validUUIDs(nil))
	assert.Empty(t, validUUIDs([]string{"v1", "v2"}))
}

// Cart berisi id non-uuid tidak boleh sampai ke query (cast uuid[] bakal
// error 502); id begitu cukup dilaporkan sebagai variant hilang.
func TestGetForSaleSkipsMalformedIDs(t *testing.T) {
	s := &SaleStore{} // DB nil: test gagal panik kalau query tetap jalan

	vs, err := s.GetForSale(context.Background(), []string{"ghost", "still-not-a-uuid"})
	require.NoError(t, err)
	assert.Empty(t, vs)
}
