package infra

import (
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/liveops-hq/backend/internal/app/appconfig"
)

func NATS(conf *appconfig.Config) (*nats.Conn, error) {
	return retry.DoWithData(func() (*nats.Conn, error) {
		return nats.Connect(conf.NatsURL)
	},
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n).Msg("infra: failed to connect to nats, retrying")
		}),
	)
}
