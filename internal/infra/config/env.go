package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/aalvaropc/topcontainers/internal/domain"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// EnvSource resolves instance credentials from the process environment, falling back to
// values read from a .env file. The process environment always wins.
type EnvSource struct {
	lookup  LookupFunc
	dotenv  map[string]string
	envPath string
}

type EnvOption func(*EnvSource)

// WithLookup replaces os.LookupEnv (tests).
func WithLookup(fn LookupFunc) EnvOption {
	return func(s *EnvSource) { s.lookup = fn }
}

// NewEnvSource reads dotenvPath if it exists. A missing file is not an error.
func NewEnvSource(dotenvPath string, opts ...EnvOption) (*EnvSource, error) {
	s := &EnvSource{
		lookup:  os.LookupEnv,
		dotenv:  map[string]string{},
		envPath: dotenvPath,
	}
	for _, opt := range opts {
		opt(s)
	}

	if strings.TrimSpace(dotenvPath) != "" {
		vals, err := godotenv.Read(dotenvPath)
		switch {
		case err == nil:
			s.dotenv = vals
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, &domain.OpError{
				Op:   "config.dotenv",
				Kind: domain.KindInvalidConfig,
				Path: dotenvPath,
				Err:  err,
			}
		}
	}
	return s, nil
}

func (s *EnvSource) get(key string) (string, bool) {
	if v, ok := s.lookup(key); ok && v != "" {
		return v, true
	}
	v, ok := s.dotenv[key]
	return v, ok && v != ""
}

// ResolveInstance reads {PREFIX}_URL, {PREFIX}_USER and {PREFIX}_PASSWORD for the tier.
// Every missing variable is reported in one error.
func (s *EnvSource) ResolveInstance(name domain.InstanceName) (domain.Instance, error) {
	prefix := name.EnvPrefix()
	keys := [...]string{prefix + "_URL", prefix + "_USER", prefix + "_PASSWORD"}

	var vals [3]string
	var missing []string
	for i, k := range keys {
		v, ok := s.get(k)
		if !ok {
			missing = append(missing, k)
			continue
		}
		vals[i] = v
	}
	if len(missing) > 0 {
		return domain.Instance{}, &domain.OpError{
			Op:   "config.resolve_instance",
			Kind: domain.KindInvalidConfig,
			Path: s.envPath,
			Err:  fmt.Errorf("%w: %s", domain.ErrMissingEnv, strings.Join(missing, ", ")),
		}
	}

	return domain.Instance{
		Name:     name,
		BaseURL:  vals[0],
		User:     vals[1],
		Password: vals[2],
	}, nil
}
