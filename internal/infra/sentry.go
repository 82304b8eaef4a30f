package infra

import (
	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"

	"github.com/liveops-hq/backend/internal/app/appconfig"
	"github.com/liveops-hq/backend/internal/pkg/bininfo"
)

func SentryInit(conf *appconfig.Config) error {
	if conf.SentryDSN == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:     conf.SentryDSN,
		Release: "backend@" + bininfo.Version,
	})
	if err != nil {
		return errors.Wrap(err, "infra: failed to initialize sentry")
	}
	return nil
}
