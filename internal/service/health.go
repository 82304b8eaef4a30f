package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
)

type Health struct {
	db    *bun.DB
	redis *redis.Client
}

func NewHealth(db *bun.DB, client *redis.Client) *Health {
	return &Health{db: db, redis: client}
}

func (s *Health) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "failed to ping postgres")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "failed to ping redis")
	}
	return nil
}
