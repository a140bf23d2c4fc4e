package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type entry struct {
	once  sync.Once
	value any
	err   error
}

var (
	entries   sync.Map // reflect.Type -> *entry
	dotenv    sync.Once
	dotenvErr error
)

// LoadEnv loads variables from the given .env files (".env" when none are
// given) without overriding variables already set in the process. It runs
// once per process; Load calls it implicitly and ignores a missing file.
func LoadEnv(files ...string) error {
	dotenv.Do(func() {
		dotenvErr = godotenv.Load(files...)
	})
	return dotenvErr
}

// Load parses environment variables into v according to its `env` tags.
// Each struct type is parsed once; later calls for the same type copy the
// cached value, so every component sees the same configuration.
//
//	type TenancyConfig struct {
//		HeaderName string `env:"TENANCY_HEADER_NAME" envDefault:"X-Tenant-ID"`
//	}
//
//	var cfg TenancyConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	_ = LoadEnv()

	key := reflect.TypeFor[T]()
	raw, _ := entries.LoadOrStore(key, &entry{})
	e := raw.(*entry)

	e.once.Do(func() {
		var parsed T
		if err := env.Parse(&parsed); err != nil {
			e.err = errors.Join(ErrParsingConfig, err)
			return
		}
		e.value = parsed
	})

	if e.err != nil {
		return e.err
	}
	cached, ok := e.value.(T)
	if !ok {
		return ErrConfigNotLoaded
	}
	*v = cached
	return nil
}

// MustLoad is Load for configuration the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// ResetCache forgets every parsed configuration type. Intended for tests.
func ResetCache() {
	entries.Clear()
}
