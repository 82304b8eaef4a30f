package httpserver

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/helmet/v2"

	"github.com/liveops-hq/backend/internal/app/appconfig"
	"github.com/liveops-hq/backend/internal/pkg/bininfo"
	"github.com/liveops-hq/backend/internal/pkg/middlewares"
	"github.com/liveops-hq/backend/internal/pkg/observability"
)

func Create(conf *appconfig.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:                 observability.ServiceName + " " + bininfo.Version,
		ServerHeader:            observability.ServiceName,
		ErrorHandler:            ErrorHandler,
		JSONEncoder:             json.Marshal,
		JSONDecoder:             json.Unmarshal,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          conf.TrustedProxies,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		DisableStartupMessage:   !conf.DevMode,
	})

	for _, handler := range middlewares.Logger() {
		app.Use(handler)
	}
	app.Use(middlewares.RequestID())
	app.Use(helmet.New())
	app.Use(cors.New())
	app.Use(recover.New(recover.Config{
		EnableStackTrace: conf.DevMode,
	}))

	if conf.SentryDSN != "" {
		app.Use(fibersentry.New(fibersentry.Config{
			Repanic: true,
		}))
	}

	prometheus := fiberprometheus.New(observability.ServiceName)
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	return app
}
