package questionset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mind-engage/pharmexam/internal/logger"
)

// Cache stores loaded sets by source id.
type Cache interface {
	Get(ctx context.Context, sourceID string) (Set, bool, error)
	Put(ctx context.Context, sourceID string, s Set) error
}

type memoryCache struct {
	mu   sync.RWMutex
	sets map[string]Set
}

func NewMemoryCache() Cache {
	return &memoryCache{sets: map[string]Set{}}
}

func (c *memoryCache) Get(_ context.Context, sourceID string) (Set, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sets[sourceID]
	return s, ok, nil
}

func (c *memoryCache) Put(_ context.Context, sourceID string, s Set) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets[sourceID] = s
	return nil
}

// redisCache keeps JSON-encoded sets under "<prefix><sourceID>".
type redisCache struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache wraps an existing client. A zero ttl keeps entries until evicted.
func NewRedisCache(rdb *goredis.Client, ttl time.Duration) Cache {
	return &redisCache{rdb: rdb, prefix: "pharmexam:qset:", ttl: ttl}
}

// DialRedis connects and pings, the way the rest of our redis clients start up.
func DialRedis(ctx context.Context, addr string) (*goredis.Client, error) {
	if addr == "" {
		return nil, errors.New("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (c *redisCache) Get(ctx context.Context, sourceID string) (Set, bool, error) {
	raw, err := c.rdb.Get(ctx, c.prefix+sourceID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return Set{}, false, nil
	}
	if err != nil {
		return Set{}, false, err
	}
	var s Set
	if err := json.Unmarshal(raw, &s); err != nil {
		return Set{}, false, err
	}
	return s, true, nil
}

func (c *redisCache) Put(ctx context.Context, sourceID string, s Set) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.prefix+sourceID, raw, c.ttl).Err()
}

type setJSON struct {
	Source  string   `json:"source"`
	Records []Record `json:"records"`
}

func (s Set) MarshalJSON() ([]byte, error) {
	recs := s.records
	if recs == nil {
		recs = []Record{}
	}
	return json.Marshal(setJSON{Source: s.source, Records: recs})
}

func (s *Set) UnmarshalJSON(b []byte) error {
	var v setJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = NewSet(v.Source, v.Records)
	return nil
}

// CachedLoader is a read-through cache in front of another Loader.
// Only successful loads are cached; cache failures fall back to the next loader.
type CachedLoader struct {
	next  Loader
	cache Cache
	log   *logger.Logger
}

func NewCachedLoader(next Loader, cache Cache, log *logger.Logger) *CachedLoader {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedLoader{next: next, cache: cache, log: log.With("component", "QuestionSetCache")}
}

func (l *CachedLoader) Load(ctx context.Context, sourceID string) (Set, error) {
	s, ok, err := l.cache.Get(ctx, sourceID)
	if err != nil {
		l.log.Warn("cache get failed", "source", sourceID, "error", err)
	} else if ok {
		return s, nil
	}
	s, err = l.next.Load(ctx, sourceID)
	if err != nil {
		return Set{}, err
	}
	if err := l.cache.Put(ctx, sourceID, s); err != nil {
		l.log.Warn("cache put failed", "source", sourceID, "error", err)
	}
	return s, nil
}
