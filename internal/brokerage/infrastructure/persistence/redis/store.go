// Package redis implements the record store, entity repositories and index
// maintainer on top of a Redis backend.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hguiagoussou/brokeragesim/internal/brokerage/domain"
	"github.com/hguiagoussou/brokeragesim/pkg/config"
	"github.com/hguiagoussou/brokeragesim/pkg/metrics"
)

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.MaxPoolSize,
		DialTimeout:  time.Duration(cfg.ConnTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// Store adapts go-redis to the RecordStore contract. Every call carries a
// bounded timeout and maps backend failure to ErrStoreUnavailable.
type Store struct {
	client    redis.UniversalClient
	opTimeout time.Duration
	metrics   *metrics.Metrics
}

// NewStore wraps a connected client. opTimeout bounds each round trip;
// zero means one second. m may be nil.
func NewStore(client redis.UniversalClient, opTimeout time.Duration, m *metrics.Metrics) *Store {
	if opTimeout <= 0 {
		opTimeout = time.Second
	}
	return &Store{client: client, opTimeout: opTimeout, metrics: m}
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrStoreUnavailable)
}

func (s *Store) observe(op string, start time.Time, err error) {
	s.metrics.ObserveStoreOp(op, time.Since(start), err)
}

// Get reads a plain value.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		s.observe("get", start, nil)
		return "", false, nil
	}
	s.observe("get", start, err)
	if err != nil {
		return "", false, storeErr("get "+key, err)
	}
	return val, true, nil
}

// Set writes a plain value without expiry; records in this store are
// immutable and never deleted.
func (s *Store) Set(ctx context.Context, key, value string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	err := s.client.Set(ctx, key, value, 0).Err()
	s.observe("set", start, err)
	if err != nil {
		return storeErr("set "+key, err)
	}
	return nil
}

// SetNX atomically reserves a key if absent.
func (s *Store) SetNX(ctx context.Context, key, value string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	won, err := s.client.SetNX(ctx, key, value, 0).Result()
	s.observe("setnx", start, err)
	if err != nil {
		return false, storeErr("setnx "+key, err)
	}
	return won, nil
}

// SetFields writes named hash fields in a single round trip.
func (s *Store) SetFields(ctx context.Context, key string, fields map[string]string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	err := s.client.HSet(ctx, key, fields).Err()
	s.observe("hset", start, err)
	if err != nil {
		return storeErr("hset "+key, err)
	}
	return nil
}

// SetField writes a single hash field.
func (s *Store) SetField(ctx context.Context, key, field, value string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	err := s.client.HSet(ctx, key, field, value).Err()
	s.observe("hset", start, err)
	if err != nil {
		return storeErr("hset "+key+" "+field, err)
	}
	return nil
}

// GetField reads a single hash field.
func (s *Store) GetField(ctx context.Context, key, field string) (string, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	val, err := s.client.HGet(ctx, key, field).Result()
	if err == redis.Nil {
		s.observe("hget", start, nil)
		return "", false, nil
	}
	s.observe("hget", start, err)
	if err != nil {
		return "", false, storeErr("hget "+key, err)
	}
	return val, true, nil
}

// GetAllFields reads an entire hash. Missing records come back as an empty
// map, mirroring the backend.
func (s *Store) GetAllFields(ctx context.Context, key string) (map[string]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	fields, err := s.client.HGetAll(ctx, key).Result()
	s.observe("hgetall", start, err)
	if err != nil {
		return nil, storeErr("hgetall "+key, err)
	}
	return fields, nil
}

// Append pushes values onto the tail of a list.
func (s *Store) Append(ctx context.Context, listKey string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	start := time.Now()
	err := s.client.RPush(ctx, listKey, args...).Err()
	s.observe("rpush", start, err)
	if err != nil {
		return storeErr("rpush "+listKey, err)
	}
	return nil
}

// Range reads a list slice in insertion order.
func (s *Store) Range(ctx context.Context, listKey string, start, stop int64) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	began := time.Now()
	vals, err := s.client.LRange(ctx, listKey, start, stop).Result()
	s.observe("lrange", began, err)
	if err != nil {
		return nil, storeErr("lrange "+listKey, err)
	}
	return vals, nil
}

// ScanKeys enumerates keys matching a glob pattern via cursor iteration.
func (s *Store) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	err := iter.Err()
	s.observe("scan", start, err)
	if err != nil {
		return nil, storeErr("scan "+pattern, err)
	}
	return keys, nil
}

// Pipeline opens a buffered command pipeline.
func (s *Store) Pipeline() domain.RecordPipeline {
	return &pipeline{store: s, pipe: s.client.Pipeline()}
}

type pipeline struct {
	store *Store
	pipe  redis.Pipeliner
	n     int
}

func (p *pipeline) Set(key, value string) {
	p.pipe.Set(context.Background(), key, value, 0)
	p.n++
}

func (p *pipeline) SetFields(key string, fields map[string]string) {
	p.pipe.HSet(context.Background(), key, fields)
	p.n++
}

func (p *pipeline) SetField(key, field, value string) {
	p.pipe.HSet(context.Background(), key, field, value)
	p.n++
}

func (p *pipeline) Append(listKey string, values ...string) {
	if len(values) == 0 {
		return
	}
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	p.pipe.RPush(context.Background(), listKey, args...)
	p.n++
}

func (p *pipeline) Len() int { return p.n }

func (p *pipeline) Exec(ctx context.Context) error {
	if p.n == 0 {
		return nil
	}
	ctx, cancel := p.store.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pipe.Exec(ctx)
	p.store.observe("pipeline", start, err)
	if err != nil {
		return storeErr(fmt.Sprintf("pipeline exec (%d commands)", p.n), err)
	}
	return nil
}
