package config

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/km-arc/go-container/framework/errors"
)

// EnvReader looks up environment variables for env() definitions.
type EnvReader interface {
	LookupEnv(name string) (string, bool)
}

// OSEnv reads the process environment.
type OSEnv struct{}

func (OSEnv) LookupEnv(name string) (string, bool) {
	return os.LookupEnv(name)
}

// MapEnv is a fixed set of variables, handy in tests.
type MapEnv map[string]string

func (m MapEnv) LookupEnv(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// DotEnv layers dotenv files over the process environment without touching
// os.Environ. Process variables win, like godotenv.Load.
type DotEnv struct {
	vars map[string]string
}

// NewDotEnv parses files in order; the first file defining a key wins.
// Missing files are an error, unlike Load.
func NewDotEnv(files ...string) (*DotEnv, error) {
	vars := make(map[string]string)
	for _, file := range files {
		parsed, err := godotenv.Read(file)
		if err != nil {
			return nil, errors.Wrapf(err, "reading env file %s", file)
		}
		for k, v := range parsed {
			if _, exists := vars[k]; !exists {
				vars[k] = v
			}
		}
	}
	return &DotEnv{vars: vars}, nil
}

func (d *DotEnv) LookupEnv(name string) (string, bool) {
	if v, ok := os.LookupEnv(name); ok {
		return v, true
	}
	v, ok := d.vars[name]
	return v, ok
}
