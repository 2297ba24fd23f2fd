package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Env is a read-only key/value store of raw environment strings.
type Env interface {
	Lookup(key string) (string, bool)
}

// OSEnv reads the process environment.
type OSEnv struct{}

// Lookup implements Env.
func (OSEnv) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnv is an in-memory Env.
type MapEnv map[string]string

// Lookup implements Env.
func (m MapEnv) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

type layeredEnv []Env

// Layered returns an Env that consults envs in order. The first store that
// has the key wins even when its value is empty, so a process variable set
// to "" shadows the .env file and then resolves to the default. Nil entries
// are skipped.
func Layered(envs ...Env) Env {
	out := make(layeredEnv, 0, len(envs))
	for _, e := range envs {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (l layeredEnv) Lookup(key string) (string, bool) {
	for _, e := range l {
		if v, ok := e.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// LoadDotEnv reads a dotenv file without touching the process environment.
// A missing file yields an empty store.
func LoadDotEnv(path string) (MapEnv, error) {
	if path == "" {
		return MapEnv{}, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return MapEnv{}, nil
		}
		return nil, fmt.Errorf("read env file %q: %w", path, err)
	}
	return MapEnv(values), nil
}
