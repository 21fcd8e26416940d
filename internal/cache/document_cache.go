package cache

import (
	"bigbrain/internal/store"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

type documentCache struct {
	client redis.UniversalClient
	prefix string
}

// NewDocumentStore creates a store.Store backed by Redis. Each document
// lives at <prefix><key> with its revision counter at <prefix><key>:rev.
func NewDocumentStore(client redis.UniversalClient, prefix string) store.Store {
	return &documentCache{
		client: client,
		prefix: prefix,
	}
}

func (c *documentCache) key(name string) string {
	return c.prefix + name
}

func (c *documentCache) revKey(name string) string {
	return fmt.Sprintf("%s%s:rev", c.prefix, name)
}

func (c *documentCache) Load(ctx context.Context, name string) (store.Document, error) {
	vals, err := c.client.MGet(ctx, c.key(name), c.revKey(name)).Result()
	if err != nil {
		return store.Document{}, err
	}

	var doc store.Document
	if s, ok := vals[0].(string); ok {
		doc.Data = []byte(s)
	}
	if s, ok := vals[1].(string); ok {
		rev, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return store.Document{}, fmt.Errorf("corrupt revision for %s: %w", name, err)
		}
		doc.Revision = rev
	}
	return doc, nil
}

func (c *documentCache) Save(ctx context.Context, name string, data []byte, expected int64) (int64, error) {
	revKey := c.revKey(name)
	next := expected + 1

	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, revKey).Int64()
		if err == redis.Nil {
			current = 0
		} else if err != nil {
			return err
		}
		if current != expected {
			return store.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(name), data, 0)
			pipe.Set(ctx, revKey, next, 0)
			return nil
		})
		return err
	}, revKey)

	if errors.Is(err, redis.TxFailedErr) {
		return 0, store.ErrConflict
	}
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (c *documentCache) Close() error {
	return c.client.Close()
}
