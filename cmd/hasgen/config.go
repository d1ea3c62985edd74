package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/lmittmann/tint"
)

// envConfig holds generator defaults read from the environment.
// Command-line flags override every value.
type envConfig struct {
	LogLevel string `env:"HASGEN_LOG_LEVEL" envDefault:"info"`
	NoCheck  bool   `env:"HASGEN_NO_CHECK"`
	Suffix   string `env:"HASGEN_SUFFIX" envDefault:"_has.gen.go"`
}

func loadEnvConfig() (envConfig, error) {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return envConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// newLogger returns a tint-backed logger writing to w at the named level
// (debug, info, warn, error). Color is only used when w is a file.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	_, isFile := w.(*os.File)
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
		NoColor:    !isFile,
	})), nil
}
