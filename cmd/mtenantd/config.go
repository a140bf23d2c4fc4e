package main

import (
	"github.com/dmitrymomot/mtenant/pkg/httpserver"
	"github.com/dmitrymomot/mtenant/pkg/tenancy"
)

type appConfig struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"APP_SERVICE" envDefault:"mtenantd"`
	LogLevel    string `env:"LOG_LEVEL"`

	// DBDriver is "sqlite" or "postgres"; DBDSN is passed to the driver.
	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"DB_DSN" envDefault:"mtenantd.db"`

	HTTP    httpserver.Config
	Tenancy tenancy.Config
}
