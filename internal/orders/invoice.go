package orders

import (
	"fmt"
	"time"
)

// Format invoice: INV-YYYYMMDD-NNNN. Serial per hari diambil dari counter
// atomik di store (bukan random), jadi unik dan monoton dalam satu hari.
func FormatInvoice(day time.Time, seq int) string {
	return fmt.Sprintf("INV-%s-%04d", day.Format("20060102"), seq)
}
