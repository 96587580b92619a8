// /home/krylon/go/src/github.com/blicero/asclepius/main.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-30 23:41:10 krylon>

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blicero/asclepius/backend"
	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/config"
)

func main() {
	fmt.Printf("%s %s\n",
		common.AppName,
		common.Version)

	var (
		err          error
		daemon       *backend.Daemon
		cfg          *config.Config
		appDir, addr string
	)

	flag.StringVar(
		&appDir,
		"appdir",
		common.BaseDir,
		"The directory where application-specific files live")

	flag.StringVar(
		&addr,
		"address",
		"",
		"Address to listen on (overrides the environment)",
	)

	flag.Parse()

	if appDir != common.BaseDir {
		if err = common.SetBaseDir(appDir); err != nil {
			fmt.Fprintf(
				os.Stderr,
				"Cannot set application directory to %s: %s\n",
				appDir,
				err.Error())
			os.Exit(1)
		}
	} else if err = common.InitApp(); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Cannot initialize application directory %s: %s\n",
			common.BaseDir,
			err.Error())
		os.Exit(1)
	}

	if cfg, err = config.Load(); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Cannot load configuration: %s\n",
			err.Error())
		os.Exit(1)
	}

	if addr != "" {
		cfg.Addr = addr
	}

	if daemon, err = backend.Summon(cfg); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Failed to initialize backend: %s\n",
			err.Error())
		os.Exit(1)
	}

	var sigQ = make(chan os.Signal, 1)
	var ticker = time.NewTicker(time.Second * 2)

	signal.Notify(sigQ, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	for daemon.IsAlive() {
		select {
		case sig := <-sigQ:
			fmt.Printf("Quitting on signal %s\n", sig)
			daemon.Banish() // nolint: errcheck
			os.Exit(0)
		case <-ticker.C:
			continue
		}
	}
}
