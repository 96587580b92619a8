// /home/krylon/go/src/github.com/blicero/asclepius/config/config.go
// -*- mode: go; coding: utf-8; -*-
// Created on 18. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-27 21:40:12 krylon>

// Package config gathers the runtime settings of the application.
// Values come from the environment, optionally seeded from a .env
// file, with the prefix ASCLEPIUS_ (e.g. ASCLEPIUS_ADDR).
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the runtime settings of the daemon.
type Config struct {
	Addr          string        `envconfig:"ADDR" default:"[::1]:7202"`
	AuthSecret    string        `envconfig:"AUTH_SECRET"`
	ResendKey     string        `envconfig:"RESEND_KEY"`
	MailFrom      string        `envconfig:"MAIL_FROM"`
	DashboardURL  string        `envconfig:"DASHBOARD_URL" default:"http://localhost:7202/"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"60s"`
	RateLimit     float64       `envconfig:"RATE_LIMIT" default:"10"`
	PoolSize      int           `envconfig:"POOL_SIZE" default:"4"`
}

// Load reads the configuration from the environment. A .env file in
// the current directory is folded into the environment first, if one
// exists; a missing file is not an error.
func Load() (*Config, error) {
	var (
		err error
		c   Config
	)

	_ = godotenv.Load() // nolint: errcheck

	if err = envconfig.Process("asclepius", &c); err != nil {
		return nil, err
	}

	return &c, nil
} // func Load() (*Config, error)
