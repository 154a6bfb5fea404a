// Package config reads settings from the environment, after loading a .env
// file when one exists.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Addr           string
	AuthAPIURL     string
	AuthAPITimeout time.Duration
	FormTTL        time.Duration
	FormLimit      int
	MutationGCTime time.Duration
	SecureCookies  bool
	AssetsDir      string
	LogLevel       log.Level

	DevAPIAddr       string
	DevAPIDB         string
	DevAPISessionTTL time.Duration
}

// Load loads .env files (a missing file is not an error) and reads the
// configuration from the environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv reads the configuration through lookup, applying defaults for
// unset variables.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	r := reader{lookup: lookup}
	cfg := Config{
		Addr:             r.string("ADDR", ":3000"),
		AuthAPIURL:       r.string("AUTH_API_URL", "http://localhost:4000"),
		AuthAPITimeout:   r.duration("AUTH_API_TIMEOUT", 10*time.Second),
		FormTTL:          r.duration("FORM_TTL", 15*time.Minute),
		FormLimit:        r.int("FORM_LIMIT", 10000),
		MutationGCTime:   r.duration("MUTATION_GC_TIME", 5*time.Minute),
		SecureCookies:    r.bool("SECURE_COOKIES", true),
		AssetsDir:        r.string("ASSETS_DIR", "assets"),
		LogLevel:         r.level("LOG_LEVEL", log.InfoLevel),
		DevAPIAddr:       r.string("DEVAPI_ADDR", ":4000"),
		DevAPIDB:         r.string("DEVAPI_DB", "db.db"),
		DevAPISessionTTL: r.duration("DEVAPI_SESSION_TTL", 24*time.Hour),
	}
	if r.err != nil {
		return Config{}, r.err
	}
	return cfg, nil
}

// reader keeps the first parse error so FromEnv can read every variable
// before checking.
type reader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *reader) value(key string) (string, bool) {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (r *reader) fail(key, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s=%q: %w", key, value, err)
	}
}

func (r *reader) string(key, def string) string {
	if v, ok := r.value(key); ok {
		return v
	}
	return def
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.value(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return d
}

func (r *reader) int(key string, def int) int {
	v, ok := r.value(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return n
}

func (r *reader) bool(key string, def bool) bool {
	v, ok := r.value(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return b
}

func (r *reader) level(key string, def log.Level) log.Level {
	v, ok := r.value(key)
	if !ok {
		return def
	}
	lvl, err := log.ParseLevel(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return lvl
}
