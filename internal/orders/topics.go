package orders

// Semua event order lewat satu topic supaya urutan per order terjaga.
const TopicOrderEvents = "order.events"

// Partition key = order_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
