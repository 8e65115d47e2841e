// Package flash carries one-shot status messages across a redirect.
package flash

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"sunday-market/internal/core/cache"
)

type Severity string

const (
	Notice Severity = "notice"
	Alert  Severity = "alert"
	Danger Severity = "danger"
)

type Message struct {
	Severity Severity `json:"severity"`
	Text     string   `json:"text"`
}

func (m Message) Empty() bool { return m.Text == "" }

func NewNotice(text string) Message { return Message{Severity: Notice, Text: text} }
func NewAlert(text string) Message  { return Message{Severity: Alert, Text: text} }
func NewDanger(text string) Message { return Message{Severity: Danger, Text: text} }

// Store keeps at most one message per key. Take returns it once and forgets it.
type Store interface {
	Put(ctx context.Context, key string, m Message) error
	Take(ctx context.Context, key string) (Message, error)
}

type RedisStore struct {
	c   *cache.Cache
	ttl time.Duration
}

func NewRedisStore(c *cache.Cache, ttl time.Duration) *RedisStore {
	return &RedisStore{c: c, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, key string, m Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.c.Put(ctx, "flash:"+key, b, s.ttl)
}

func (s *RedisStore) Take(ctx context.Context, key string) (Message, error) {
	var m Message
	b, err := s.c.Take(ctx, "flash:"+key)
	if err != nil || b == nil {
		return m, err
	}
	err = json.Unmarshal(b, &m)
	return m, err
}

// MemoryStore is a process-local Store for single-instance deployments and tests.
type MemoryStore struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	m   map[string]memEntry
}

type memEntry struct {
	msg Message
	exp time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MemoryStore{ttl: ttl, now: time.Now, m: make(map[string]memEntry)}
}

func (s *MemoryStore) Put(_ context.Context, key string, m Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.m {
		if now.After(e.exp) {
			delete(s.m, k)
		}
	}
	s.m[key] = memEntry{msg: m, exp: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Take(_ context.Context, key string) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[key]
	if !ok {
		return Message{}, nil
	}
	delete(s.m, key)
	if s.now().After(e.exp) {
		return Message{}, nil
	}
	return e.msg, nil
}
