package config

import (
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

var Config = ChanwatchConfig{
	Env:      Dev,
	LogLevel: zerolog.InfoLevel,
	Postgres: PostgresConfig{
		User:     "chanwatch",
		Password: "password",
		Hostname: "localhost",
		Port:     5432,
		DbName:   "chanwatch",
		LogLevel: tracelog.LogLevelWarn,
		MinConn:  2,
		MaxConn:  10,
	},
}
