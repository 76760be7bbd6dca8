package observability

import (
	"sort"
	"sync"
	"time"
)

// TimingStat summarises one statement kind. Durations are milliseconds.
type TimingStat struct {
	Operation string  `json:"operation"`
	Count     int64   `json:"count"`
	Errors    int64   `json:"errors"`
	TotalMs   float64 `json:"total_ms"`
	AvgMs     float64 `json:"avg_ms"`
	MinMs     float64 `json:"min_ms"`
	MaxMs     float64 `json:"max_ms"`
}

// QueryTimings accumulates statement latencies since process start.
type QueryTimings struct {
	mu    sync.Mutex
	stats map[string]*timingAcc
}

type timingAcc struct {
	count  int64
	errors int64
	total  time.Duration
	min    time.Duration
	max    time.Duration
}

func NewQueryTimings() *QueryTimings {
	return &QueryTimings{stats: map[string]*timingAcc{}}
}

func (q *QueryTimings) Observe(operation string, dur time.Duration, err error) {
	if q == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	acc, ok := q.stats[operation]
	if !ok {
		acc = &timingAcc{min: dur, max: dur}
		q.stats[operation] = acc
	}
	acc.count++
	acc.total += dur
	if dur < acc.min {
		acc.min = dur
	}
	if dur > acc.max {
		acc.max = dur
	}
	if err != nil {
		acc.errors++
	}
}

// Snapshot returns per-operation stats sorted by operation name.
func (q *QueryTimings) Snapshot() []TimingStat {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]TimingStat, 0, len(q.stats))
	for op, acc := range q.stats {
		out = append(out, acc.stat(op))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

// Total folds every operation into one summary.
func (q *QueryTimings) Total() TimingStat {
	all := timingAcc{}
	first := true
	if q != nil {
		q.mu.Lock()
		for _, acc := range q.stats {
			all.count += acc.count
			all.errors += acc.errors
			all.total += acc.total
			if first || acc.min < all.min {
				all.min = acc.min
			}
			if acc.max > all.max {
				all.max = acc.max
			}
			first = false
		}
		q.mu.Unlock()
	}
	return all.stat("all")
}

func (a timingAcc) stat(op string) TimingStat {
	s := TimingStat{
		Operation: op,
		Count:     a.count,
		Errors:    a.errors,
		TotalMs:   ms(a.total),
		MinMs:     ms(a.min),
		MaxMs:     ms(a.max),
	}
	if a.count > 0 {
		s.AvgMs = s.TotalMs / float64(a.count)
	}
	return s
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
