// Package schedule partitions the country catalog into fixed-size batches
// across successive runs using a persisted round-robin cursor.
package schedule

// NextBatch returns up to batchSize keys from catalog starting at cursor,
// wrapping past the end, and the cursor for the following run.
//
// The cursor is normalized modulo len(catalog) first, so a stale persisted
// value survives the catalog growing or shrinking between runs. Repeated
// calls feeding the returned cursor back in visit every key exactly once per
// full cycle, in catalog order, for any batch size.
func NextBatch(catalog []string, cursor, batchSize int) (batch []string, next int) {
	n := len(catalog)
	if n == 0 {
		return nil, 0
	}

	cursor = ((cursor % n) + n) % n
	if batchSize <= 0 {
		return nil, cursor
	}

	take := batchSize
	if take > n {
		take = n
	}

	batch = make([]string, 0, take)
	for i := 0; i < take; i++ {
		batch = append(batch, catalog[(cursor+i)%n])
	}
	return batch, (cursor + take) % n
}
