// Package redis keeps each user's ledger in a Redis hash.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"bilancio/internal/core"
	"bilancio/internal/store"

	goredis "github.com/redis/go-redis/v9"
)

// Client is the shared connection used by every session store.
type Client struct {
	rdb *goredis.Client
}

// Open parses a redis:// URL, connects and pings.
func Open(ctx context.Context, rawURL string) (*Client, error) {
	opts, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// NewClient wraps an existing go-redis client.
func NewClient(rdb *goredis.Client) *Client { return &Client{rdb: rdb} }

func (c *Client) Close() error { return c.rdb.Close() }

func (c *Client) Ping(ctx context.Context) error { return c.rdb.Ping(ctx).Err() }

func (c *Client) ForSession(session core.Session) (store.Store, error) {
	return New(c, session)
}

type Store struct {
	rdb     *goredis.Client
	session core.Session
	key     string
}

func New(c *Client, session core.Session) (*Store, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	return &Store{rdb: c.rdb, session: session, key: keyLedger(session.UserID)}, nil
}

func (s *Store) Create(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	b, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("encode transaction: %w", err)
	}
	ok, err := s.rdb.HSetNX(ctx, s.key, tx.ID, b).Result()
	if err != nil {
		return fmt.Errorf("store transaction: %w", err)
	}
	if !ok {
		return fmt.Errorf("create %s: %w", tx.ID, store.ErrDuplicate)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]core.Transaction, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(fields))
	for id, raw := range fields {
		var tx core.Transaction
		if err := json.Unmarshal([]byte(raw), &tx); err != nil {
			return nil, fmt.Errorf("decode transaction %s: %w", id, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	n, err := s.rdb.HDel(ctx, s.key, id).Result()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", id, store.ErrNotFound)
	}
	return nil
}
