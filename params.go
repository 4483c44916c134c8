package cmis

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/cmisgo/cmis.go/pkg/connection"
	"github.com/cmisgo/cmis.go/pkg/linkcache"
)

// Session parameter names.
const (
	ParamAtomPubURL            = "atompub.url"
	ParamUser                  = "user"
	ParamPassword              = "password"
	ParamCompression           = "compression"
	ParamHTTPTimeout           = "http.timeout"
	ParamCacheRepositoriesSize = "cache.repositories.size"
	ParamCacheTypesSize        = "cache.types.size"
	ParamCacheLinksSize        = "cache.links.size"
	ParamLogLevel              = "log.level"
)

// EnvPrefix prefixes the environment variables that override parameter files,
// e.g. CMIS_ATOMPUB_URL.
const EnvPrefix = "CMIS"

var knownParameters = []string{
	ParamAtomPubURL,
	ParamUser,
	ParamPassword,
	ParamCompression,
	ParamHTTPTimeout,
	ParamCacheRepositoriesSize,
	ParamCacheTypesSize,
	ParamCacheLinksSize,
	ParamLogLevel,
}

// Parameters configure a session.
type Parameters map[string]string

// LoadParameters reads parameters from a YAML, JSON or TOML file. Environment
// variables named after the parameter with EnvPrefix, such as
// CMIS_CACHE_LINKS_SIZE, take precedence.
func LoadParameters(path string) (Parameters, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read parameters from %s: %w", path, err)
	}

	params := Parameters{}
	for _, key := range v.AllKeys() {
		params[key] = v.GetString(key)
	}
	// AllKeys only lists keys present in the file.
	for _, key := range knownParameters {
		if v.IsSet(key) {
			params[key] = v.GetString(key)
		}
	}
	return params, nil
}

func (p Parameters) get(key string) string {
	return strings.TrimSpace(p[key])
}

func (p Parameters) bool(key string) bool {
	b, err := strconv.ParseBool(p.get(key))
	return err == nil && b
}

// duration accepts Go durations ("30s") and plain milliseconds.
func (p Parameters) duration(key string, def time.Duration, log zerolog.Logger) time.Duration {
	v := p.get(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	log.Warn().Str("parameter", key).Str("value", v).Dur("default", def).Msg("invalid duration ignored")
	return def
}

// size returns a positive cache size, or def.
func (p Parameters) size(key string, def int, log zerolog.Logger) int {
	v := p.get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		log.Warn().Str("parameter", key).Str("value", v).Int("default", def).Msg("invalid cache size ignored")
		return def
	}
	return n
}

func (p Parameters) linkCacheConfig(log zerolog.Logger) linkcache.Config {
	return linkcache.Config{
		Repositories: p.size(ParamCacheRepositoriesSize, linkcache.DefaultRepositories, log),
		Types:        p.size(ParamCacheTypesSize, linkcache.DefaultTypes, log),
		Objects:      p.size(ParamCacheLinksSize, linkcache.DefaultObjects, log),
	}
}

func (p Parameters) connectionConfig(log zerolog.Logger) (*connection.Config, error) {
	raw := p.get(ParamAtomPubURL)
	if raw == "" {
		return nil, fmt.Errorf("%w: parameter %s is required", ErrInvalidArgument, ParamAtomPubURL)
	}
	u, err := parseServiceURL(raw)
	if err != nil {
		return nil, err
	}

	cfg := connection.NewConfig(u)
	cfg.User = p.get(ParamUser)
	cfg.Password = p[ParamPassword]
	cfg.Compression = p.bool(ParamCompression)
	cfg.Timeout = p.duration(ParamHTTPTimeout, connection.DefaultTimeout, log)
	cfg.Logger = &log
	return cfg, nil
}
