package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// settings holds every raw value plus the parsed values already requested, keyed by
// setting name and then by getter, so one key may be read as int and int64.
// Parsed caches are invalidated whenever a raw value changes.
type settings struct {
	sync.RWMutex
	raw    map[string]string
	parsed map[string]map[string]interface{}
}

var env = &settings{
	raw:    make(map[string]string),
	parsed: make(map[string]map[string]interface{}),
}

func init() {
	for _, entry := range os.Environ() {
		if i := strings.IndexByte(entry, '='); i > 0 {
			env.raw[entry[:i]] = entry[i+1:]
		}
	}
}

// Load merges the given dotenv files into the settings. Variables already present in the
// process environment win over file values. Missing files are ignored.
func Load(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		values, err := godotenv.Read(f)
		if err != nil {
			return fmt.Errorf("failed to read env file %s: %w", f, err)
		}
		env.Lock()
		for k, v := range values {
			if _, exists := os.LookupEnv(k); exists {
				continue
			}
			env.raw[k] = v
			delete(env.parsed, k)
		}
		env.Unlock()
	}
	return nil
}

// lookup returns the cached parsed value of key, parsing the raw string on first use.
// It panics when key is unset and no default is supplied, or when parsing fails.
func lookup[T any](kind, key string, parse func(string) (T, error), def []T) T {
	env.RLock()
	if v, ok := env.parsed[key][kind]; ok {
		env.RUnlock()
		return v.(T)
	}
	raw, exists := env.raw[key]
	env.RUnlock()

	if !exists {
		if len(def) == 0 {
			panic(fmt.Errorf("setting %s does not exist", key))
		}
		return def[0]
	}
	v, err := parse(raw)
	if err != nil {
		panic(fmt.Errorf("failed to parse setting %s=%q, err=%w", key, raw, err))
	}
	env.Lock()
	if env.raw[key] == raw {
		if env.parsed[key] == nil {
			env.parsed[key] = make(map[string]interface{})
		}
		env.parsed[key][kind] = v
	}
	env.Unlock()
	return v
}

// GetString returns a setting in string.
func GetString(key string, def ...string) string {
	return lookup("string", key, func(s string) (string, error) { return s, nil }, def)
}

// GetBool returns a setting in bool.
func GetBool(key string, def ...bool) bool {
	return lookup("bool", key, strconv.ParseBool, def)
}

// GetInt returns a setting in integer.
func GetInt(key string, def ...int) int {
	return lookup("int", key, func(s string) (int, error) {
		v, err := strconv.ParseInt(s, 0, 32)
		return int(v), err
	}, def)
}

// GetInt64 returns a setting in int64.
func GetInt64(key string, def ...int64) int64 {
	return lookup("int64", key, func(s string) (int64, error) {
		return strconv.ParseInt(s, 0, 64)
	}, def)
}

// GetMillisecond returns a setting given in milliseconds as time.Duration.
func GetMillisecond(key string, def ...time.Duration) time.Duration {
	return lookup("millisecond", key, func(s string) (time.Duration, error) {
		v, err := strconv.ParseUint(s, 0, 32)
		return time.Duration(v) * time.Millisecond, err
	}, def)
}

// GetDuration returns a setting written in time.ParseDuration format, e.g. "90s".
func GetDuration(key string, def ...time.Duration) time.Duration {
	return lookup("duration", key, time.ParseDuration, def)
}

// GetDecimal returns a setting in decimal.
func GetDecimal(key string, def ...decimal.Decimal) decimal.Decimal {
	return lookup("decimal", key, decimal.NewFromString, def)
}

// SetString overrides a setting.
func SetString(key string, value string) {
	env.Lock()
	env.raw[key] = value
	delete(env.parsed, key)
	env.Unlock()
}
