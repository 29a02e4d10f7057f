package redisx

import "time"

const (
	// Idempotency submit order: idem:order:submit:{key} -> order_id
	KeyIdemOrderSubmit = "idem:order:submit:%s"

	// Cache order hasil read-back: order:{order_id} -> json order lengkap
	KeyOrder = "order:%s"

	// Dedup event processing di consumer reporting: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Cache report: report:sales:{from}:{to}
	KeyReportSales = "report:sales:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLOrderCache  = 10 * time.Minute
	TTLDedup       = 48 * time.Hour
)
