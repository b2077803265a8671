package schedule

import (
	"reflect"
	"testing"
)

func TestNextBatchWrapsAroundCatalog(t *testing.T) {
	catalog := []string{"US", "CA", "GB", "FR"}

	batch, next := NextBatch(catalog, 3, 2)
	if !reflect.DeepEqual(batch, []string{"FR", "US"}) {
		t.Errorf("batch = %v, want [FR US]", batch)
	}
	if next != 1 {
		t.Errorf("next = %d, want 1", next)
	}
}

func TestNextBatchEmptyCatalog(t *testing.T) {
	for _, cursor := range []int{-5, 0, 3, 100} {
		batch, next := NextBatch(nil, cursor, 4)
		if len(batch) != 0 {
			t.Errorf("cursor %d: batch = %v, want empty", cursor, batch)
		}
		if next != 0 {
			t.Errorf("cursor %d: next = %d, want 0", cursor, next)
		}
	}
}

func TestNextBatchNormalizesCursor(t *testing.T) {
	catalog := []string{"US", "CA", "GB"}

	batch, next := NextBatch(catalog, 7, 1) // 7 mod 3 = 1
	if !reflect.DeepEqual(batch, []string{"CA"}) {
		t.Errorf("batch = %v, want [CA]", batch)
	}
	if next != 2 {
		t.Errorf("next = %d, want 2", next)
	}

	batch, _ = NextBatch(catalog, -1, 1) // -1 normalizes to 2
	if !reflect.DeepEqual(batch, []string{"GB"}) {
		t.Errorf("negative cursor batch = %v, want [GB]", batch)
	}
}

func TestNextBatchLargerThanCatalog(t *testing.T) {
	catalog := []string{"US", "CA"}

	batch, next := NextBatch(catalog, 1, 10)
	if !reflect.DeepEqual(batch, []string{"CA", "US"}) {
		t.Errorf("batch = %v, want [CA US]", batch)
	}
	if next != 1 {
		t.Errorf("next = %d, want 1", next)
	}
}

// Repeated calls must visit every key exactly once per cycle, in catalog
// order, for any batch size.
func TestNextBatchFullCycleCoverage(t *testing.T) {
	catalog := []string{"US", "GB", "CA", "AU", "DE", "FR", "JP"}

	for batchSize := 1; batchSize <= len(catalog)+2; batchSize++ {
		cursor := 3
		seen := make(map[string]int)
		calls := (len(catalog) + batchSize - 1) / batchSize

		var batch []string
		for i := 0; i < calls; i++ {
			batch, cursor = NextBatch(catalog, cursor, batchSize)
			for _, k := range batch {
				seen[k]++
			}
		}

		// The final call may wrap into the next cycle; no key may be two
		// visits ahead of any other.
		min, max := calls*batchSize, 0
		for _, c := range catalog {
			n := seen[c]
			if n < min {
				min = n
			}
			if n > max {
				max = n
			}
		}
		if min < 1 {
			t.Errorf("batchSize %d: some keys never visited: %v", batchSize, seen)
		}
		if max-min > 1 {
			t.Errorf("batchSize %d: uneven coverage: %v", batchSize, seen)
		}
	}
}

func TestNextBatchZeroSize(t *testing.T) {
	batch, next := NextBatch([]string{"US", "CA"}, 5, 0)
	if len(batch) != 0 {
		t.Errorf("batch = %v, want empty", batch)
	}
	if next != 1 {
		t.Errorf("next = %d, want normalized cursor 1", next)
	}
}
