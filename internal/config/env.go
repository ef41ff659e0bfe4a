// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"net"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
)

// SSH configures cmd/ssh.
type SSH struct {
	Host            string        `env:"SSH_HOST" envDefault:"::"`
	Port            string        `env:"SSH_PORT" envDefault:"2222"`
	HostKeyPath     string        `env:"SSH_HOST_KEY" envDefault:"/app/keys/host_key"`
	ShutdownTimeout time.Duration `env:"SSH_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	Game            Game
}

// Addr returns the listen address.
func (c SSH) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Web configures cmd/web.
type Web struct {
	Host           string `env:"WEB_HOST" envDefault:"0.0.0.0"`
	Port           string `env:"WEB_PORT" envDefault:"8080"`
	SSHDisplayHost string `env:"SSH_DISPLAY_HOST" envDefault:"your-server.com"`
	SSHDisplayPort string `env:"SSH_DISPLAY_PORT" envDefault:"2222"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
}

// Addr returns the listen address.
func (c Web) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Game holds gameplay switches shared by every front end.
type Game struct {
	Sound       bool    `env:"SSHTRIS_SOUND" envDefault:"false"`
	Volume      float64 `env:"SSHTRIS_VOLUME" envDefault:"0.7"`
	SweepTopRow bool    `env:"SSHTRIS_SWEEP_TOP_ROW" envDefault:"false"`
}

// ParseEnv populates target from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Level parses a log level name, falling back to info.
func Level(name string) log.Level {
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
