package orders

const (
	TopicOrderCreated  = "pos.order.created"
	TopicOrderReversed = "pos.order.reversed"
)

// Partition key = order_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
