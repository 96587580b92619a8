// /home/krylon/go/src/github.com/blicero/asclepius/config/01_config_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 18. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-18 19:12:47 krylon>

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	var (
		err error
		c   *Config
	)

	if c, err = Load(); err != nil {
		t.Fatalf("Cannot load configuration: %s",
			err.Error())
	} else if c.Addr != "[::1]:7202" {
		t.Errorf("Unexpected default address: %q",
			c.Addr)
	} else if c.SweepInterval != time.Minute {
		t.Errorf("Unexpected default sweep interval: %s",
			c.SweepInterval)
	} else if c.PoolSize != 4 {
		t.Errorf("Unexpected default pool size: %d",
			c.PoolSize)
	}
} // func TestLoadDefaults(t *testing.T)

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("ASCLEPIUS_ADDR", "0.0.0.0:8080")
	t.Setenv("ASCLEPIUS_SWEEP_INTERVAL", "5m")
	t.Setenv("ASCLEPIUS_AUTH_SECRET", "hocus-pocus")

	var (
		err error
		c   *Config
	)

	if c, err = Load(); err != nil {
		t.Fatalf("Cannot load configuration: %s",
			err.Error())
	} else if c.Addr != "0.0.0.0:8080" {
		t.Errorf("Address was not taken from the environment: %q",
			c.Addr)
	} else if c.SweepInterval != 5*time.Minute {
		t.Errorf("Sweep interval was not taken from the environment: %s",
			c.SweepInterval)
	} else if c.AuthSecret != "hocus-pocus" {
		t.Errorf("Auth secret was not taken from the environment: %q",
			c.AuthSecret)
	}
} // func TestLoadEnvironment(t *testing.T)
