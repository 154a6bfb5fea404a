// Package query runs outbound calls as mutations with observable phases.
//
// A Client is created once per process and handed to everything that builds
// mutations. It counts mutations in flight and remembers recently settled
// ones for a garbage-collection window; it never caches mutation results.
package query

import (
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zekroTJA/timedmap"
)

const (
	defaultGCTime       = 5 * time.Minute
	defaultCleanupEvery = time.Minute
)

type Client struct {
	log      log.FieldLogger
	gcTime   time.Duration
	settled  *timedmap.TimedMap
	mutating atomic.Int64
}

type Option func(*Client)

// WithGCTime sets how long a settled mutation stays in the client.
func WithGCTime(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.gcTime = d
		}
	}
}

func WithLogger(l log.FieldLogger) Option {
	return func(c *Client) {
		c.log = l
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		log:    log.StandardLogger(),
		gcTime: defaultGCTime,
	}
	for _, opt := range opts {
		opt(c)
	}
	cleanup := defaultCleanupEvery
	if c.gcTime < cleanup {
		cleanup = c.gcTime
	}
	c.settled = timedmap.New(cleanup)
	return c
}

// Record describes a settled mutation kept by the client.
type Record struct {
	Key       string
	Status    Status
	SettledAt time.Time
}

// IsMutating returns the number of mutations in flight.
func (c *Client) IsMutating() int {
	return int(c.mutating.Load())
}

// Recent returns the number of settled mutations still inside the GC window.
func (c *Client) Recent() int {
	return c.settled.Size()
}

// Lookup returns the record of a settled mutation by id.
func (c *Client) Lookup(id string) (Record, bool) {
	rec, ok := c.settled.GetValue(id).(Record)
	return rec, ok
}

func (c *Client) Close() {
	c.settled.StopCleaner()
}

func (c *Client) started(id, key string) {
	c.mutating.Add(1)
	c.settled.Remove(id)
	c.log.WithFields(log.Fields{"mutation": key, "id": id}).Debug("mutation started")
}

func (c *Client) finished(id, key string, status Status) {
	c.mutating.Add(-1)
	c.settled.Set(id, Record{Key: key, Status: status, SettledAt: time.Now()}, c.gcTime)
	c.log.WithFields(log.Fields{"mutation": key, "id": id, "status": status}).Debug("mutation settled")
}
