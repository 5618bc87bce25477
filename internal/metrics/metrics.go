// Package metrics provides run statistics for the docs scraper.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector collects and aggregates run metrics.
type Collector struct {
	requestsTotal   atomic.Int64
	errorsTotal     atomic.Int64
	bytesTotal      atomic.Int64
	pathsListed     atomic.Int64
	endpointsParsed atomic.Int64
	paramsParsed    atomic.Int64
	paramsDropped   atomic.Int64

	responseTimesSum atomic.Int64
	responseTimesNum atomic.Int64

	errorCounts map[string]*atomic.Int64
	errorMu     sync.RWMutex

	startTime time.Time
}

// New creates a new metrics collector.
func New() *Collector {
	return &Collector{
		errorCounts: make(map[string]*atomic.Int64),
		startTime:   time.Now(),
	}
}

// RecordRequest records an HTTP request.
func (c *Collector) RecordRequest() {
	c.requestsTotal.Add(1)
}

// RecordError records an error by type.
func (c *Collector) RecordError(errorType string) {
	c.errorsTotal.Add(1)

	c.errorMu.Lock()
	if c.errorCounts[errorType] == nil {
		c.errorCounts[errorType] = &atomic.Int64{}
	}
	c.errorCounts[errorType].Add(1)
	c.errorMu.Unlock()
}

// RecordResponseTime records a response time.
func (c *Collector) RecordResponseTime(d time.Duration) {
	c.responseTimesSum.Add(d.Milliseconds())
	c.responseTimesNum.Add(1)
}

// RecordBytes records transferred bytes.
func (c *Collector) RecordBytes(n int64) {
	c.bytesTotal.Add(n)
}

// RecordPathsListed records the number of reference paths found on the listing page.
func (c *Collector) RecordPathsListed(n int) {
	c.pathsListed.Add(int64(n))
}

// RecordEndpoint records one parsed endpoint with its kept and dropped parameters.
func (c *Collector) RecordEndpoint(params, dropped int) {
	c.endpointsParsed.Add(1)
	c.paramsParsed.Add(int64(params))
	c.paramsDropped.Add(int64(dropped))
}

// GetAverageResponseTime returns the average response time.
func (c *Collector) GetAverageResponseTime() time.Duration {
	sum := c.responseTimesSum.Load()
	num := c.responseTimesNum.Load()
	if num == 0 {
		return 0
	}
	return time.Duration(sum/num) * time.Millisecond
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	s := Snapshot{
		Uptime:              time.Since(c.startTime),
		RequestsTotal:       c.requestsTotal.Load(),
		ErrorsTotal:         c.errorsTotal.Load(),
		BytesTotal:          c.bytesTotal.Load(),
		PathsListed:         c.pathsListed.Load(),
		EndpointsParsed:     c.endpointsParsed.Load(),
		ParamsParsed:        c.paramsParsed.Load(),
		ParamsDropped:       c.paramsDropped.Load(),
		AverageResponseTime: c.GetAverageResponseTime(),
		ErrorCounts:         make(map[string]int64),
	}

	c.errorMu.RLock()
	for k, v := range c.errorCounts {
		s.ErrorCounts[k] = v.Load()
	}
	c.errorMu.RUnlock()

	return s
}

// Snapshot represents a point-in-time view of metrics.
type Snapshot struct {
	Uptime              time.Duration    `json:"uptime"`
	RequestsTotal       int64            `json:"requests_total"`
	ErrorsTotal         int64            `json:"errors_total"`
	BytesTotal          int64            `json:"bytes_total"`
	PathsListed         int64            `json:"paths_listed"`
	EndpointsParsed     int64            `json:"endpoints_parsed"`
	ParamsParsed        int64            `json:"params_parsed"`
	ParamsDropped       int64            `json:"params_dropped"`
	AverageResponseTime time.Duration    `json:"average_response_time"`
	ErrorCounts         map[string]int64 `json:"error_counts"`
}

// Summary returns the snapshot as log fields.
func (s Snapshot) Summary() map[string]interface{} {
	return map[string]interface{}{
		"uptime":               s.Uptime.String(),
		"requests_total":       s.RequestsTotal,
		"errors_total":         s.ErrorsTotal,
		"bytes_total":          s.BytesTotal,
		"paths_listed":         s.PathsListed,
		"endpoints_parsed":     s.EndpointsParsed,
		"params_parsed":        s.ParamsParsed,
		"params_dropped":       s.ParamsDropped,
		"avg_response_time_ms": s.AverageResponseTime.Milliseconds(),
	}
}
