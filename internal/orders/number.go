package orders

import (
	"fmt"
	"time"
)

const OrderNumberPrefix = "EVN"

// FormatOrderNumber renders EVN-<unix millis>-<sequence>. The sequence comes
// from the order_number_seq sequence, so two orders in the same millisecond
// still differ.
func FormatOrderNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", OrderNumberPrefix, at.UnixMilli(), seq%10000)
}
