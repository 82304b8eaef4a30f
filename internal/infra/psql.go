package infra

import (
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/liveops-hq/backend/internal/app/appconfig"
)

func Postgres(conf *appconfig.Config) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(conf.PostgresDSN)))

	sqldb.SetMaxOpenConns(conf.PostgresMaxOpenConns)
	sqldb.SetMaxIdleConns(conf.PostgresMaxIdleConns)
	sqldb.SetConnMaxLifetime(conf.PostgresConnMaxLifeTime)
	sqldb.SetConnMaxIdleTime(conf.PostgresConnMaxIdleTime)

	db := bun.NewDB(sqldb, pgdialect.New())

	if conf.DevMode {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(conf.BunDebugVerbose),
		))
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
