package metrics

import "sync"

// Collector keeps in-process request and error counters. It is a diagnostic
// surface, not a metrics product; the /metrics handler dumps a snapshot.
type Collector struct {
	mu           sync.Mutex
	requests     int64
	byStatus     map[int]int64
	errorsByCode map[string]int64
}

func NewCollector() *Collector {
	return &Collector{
		byStatus:     make(map[int]int64),
		errorsByCode: make(map[string]int64),
	}
}

func (c *Collector) RecordRequest(status int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests++
	c.byStatus[status]++
}

func (c *Collector) RecordError(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorsByCode[code]++
}

type Snapshot struct {
	Requests     int64            `json:"requests"`
	ByStatus     map[int]int64    `json:"by_status"`
	ErrorsByCode map[string]int64 `json:"errors_by_code"`
}

func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	byStatus := make(map[int]int64, len(c.byStatus))
	for status, count := range c.byStatus {
		byStatus[status] = count
	}
	errorsByCode := make(map[string]int64, len(c.errorsByCode))
	for code, count := range c.errorsByCode {
		errorsByCode[code] = count
	}
	return Snapshot{Requests: c.requests, ByStatus: byStatus, ErrorsByCode: errorsByCode}
}
