package orders

import "strconv"

const TopicOrderPlaced = "order.placed"

// Partition key = order_id, so every event of one order stays ordered.
func PartitionKey(orderID int64) []byte { return []byte(strconv.FormatInt(orderID, 10)) }
