package infra

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/liveops-hq/backend/internal/app/appconfig"
	"github.com/liveops-hq/backend/internal/pkg/cache"
)

func Redis(conf *appconfig.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(conf.RedisURL)
	if err != nil {
		return nil, errors.Wrap(err, "infra: failed to parse redis url")
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "infra: failed to ping redis")
	}

	cache.Initialize(client)

	return client, nil
}
