package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"techjobs/internal/models"
)

// minChunk keeps small tables on a single worker.
const minChunk = 4096

// ValueCounts returns how often each exact value of column occurs, highest
// count first. Ties are ordered by value, ignoring case.
func (s *Store) ValueCounts(ctx context.Context, column string) ([]models.ValueCount, error) {
	cs, err := s.columnStore(ctx)
	if err != nil {
		return nil, err
	}
	c := cs.Column(column)
	if c < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, column)
	}
	counts := countIDs(cs.IDs[c], len(cs.Dicts[c]))

	out := make([]models.ValueCount, 0, len(counts))
	for id, n := range counts {
		if n > 0 {
			out = append(out, models.ValueCount{Value: cs.Dicts[c][id], Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return CompareFold(out[i].Value, out[j].Value) < 0
	})
	return out, nil
}

// countIDs histograms ids in parallel chunks and merges the partials.
func countIDs(ids []int32, dictSize int) []int {
	numWorkers := runtime.NumCPU()
	if n := len(ids)/minChunk + 1; n < numWorkers {
		numWorkers = n
	}
	chunkSize := len(ids) / numWorkers

	results := make(chan []int, numWorkers)
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if i == numWorkers-1 {
			end = len(ids)
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			partial := make([]int, dictSize)
			for _, id := range ids[s:e] {
				partial[id]++
			}
			results <- partial
		}(start, end)
	}

	go func() { wg.Wait(); close(results) }()

	final := make([]int, dictSize)
	for p := range results {
		for i, n := range p {
			final[i] += n
		}
	}
	return final
}
