package venuehttp

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeromicro/go-zero/core/collection"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

// Store keeps encoded upstream responses for the revalidation window.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// MemoryStore is an in-process Store backed by go-zero's expiring cache.
type MemoryStore struct {
	cache *collection.Cache
}

// NewMemoryStore builds a MemoryStore whose entries expire after ttl unless
// Set is given a shorter one.
func NewMemoryStore(ttl time.Duration) (*MemoryStore, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	c, err := collection.NewCache(ttl, collection.WithName("venuehttp"))
	if err != nil {
		return nil, err
	}
	return &MemoryStore{cache: c}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	raw, ok := v.([]byte)
	return raw, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.cache.SetWithExpire(key, value, ttl)
	return nil
}

// RedisStore shares the revalidation window across replicas.
type RedisStore struct {
	rds *redis.Redis
}

func NewRedisStore(rds *redis.Redis) *RedisStore {
	return &RedisStore{rds: rds}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.rds.GetCtx(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if val == "" {
		return nil, false, nil
	}
	return []byte(val), true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	seconds := int(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return s.rds.SetexCtx(ctx, key, string(value), seconds)
}

type entry struct {
	Status   int                 `msgpack:"s"`
	Header   map[string][]string `msgpack:"h"`
	Body     []byte              `msgpack:"b"`
	StoredAt int64               `msgpack:"t"`
}

func captureEntry(resp *http.Response) (*entry, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &entry{
		Status:   resp.StatusCode,
		Header:   resp.Header.Clone(),
		Body:     body,
		StoredAt: time.Now().UnixMilli(),
	}, nil
}

func decodeEntry(raw []byte) (*entry, error) {
	var e entry
	if err := msgpack.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (e *entry) encode() ([]byte, error) {
	return msgpack.Marshal(e)
}

// response materialises a fresh *http.Response so each caller owns its body.
func (e *entry) response(req *http.Request) *http.Response {
	header := http.Header(e.Header).Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set("X-Fuji-Stored-At", strconv.FormatInt(e.StoredAt, 10))
	return &http.Response{
		Status:        strconv.Itoa(e.Status) + " " + http.StatusText(e.Status),
		StatusCode:    e.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}
