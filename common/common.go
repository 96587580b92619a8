// /home/krylon/go/src/github.com/blicero/asclepius/common/common.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-18 21:14:33 krylon>

// Package common provides constants, variables and functions used
// throughout the application.
package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/blicero/asclepius/logdomain"
	"github.com/blicero/krylib"
	"github.com/hashicorp/logutils"
	"github.com/odeke-em/go-uuid"
)

// Debug indicates whether to emit additional log messages and perform
// additional sanity checks.
// Version is the version number to display.
// AppName is the name of the application.
// TimestampFormat is the format string used to render datetime values.
// DefaultPort is the TCP port the backend listens on by default.
const (
	Debug                 = true
	Version               = "0.4.2"
	AppName               = "Asclepius"
	TimestampFormat       = "2006-01-02 15:04:05"
	TimestampFormatMinute = "2006-01-02 15:04"
	TimestampFormatDate   = "2006-01-02"
	DefaultPort           = 7202
)

// LogLevels are the names of the log levels supported by the logger.
var LogLevels = []logutils.LogLevel{
	"TRACE",
	"DEBUG",
	"INFO",
	"WARNING",
	"ERROR",
	"CRITICAL",
	"CANTHAPPEN",
	"SILENT",
}

// PackageLevels defines minimum log levels per package.
var PackageLevels = func() (m map[logdomain.ID]logutils.LogLevel) {
	m = make(map[logdomain.ID]logutils.LogLevel, len(logdomain.AllDomains()))

	for _, id := range logdomain.AllDomains() {
		m[id] = "TRACE"
	}

	return
}()

// BaseDir is the folder where all application-specific files (database,
// log files, etc) are stored.
// LogPath is the file to which the log is written.
// DbPath is the path of the database.
var (
	BaseDir = filepath.Join(os.Getenv("HOME"), ".asclepius.d")
	LogPath = filepath.Join(BaseDir, "asclepius.log")
	DbPath  = filepath.Join(BaseDir, "asclepius.db")
)

// SetBaseDir sets the BaseDir and related variables.
func SetBaseDir(path string) error {
	fmt.Printf("Setting BaseDir to %s\n", path)

	BaseDir = path
	LogPath = filepath.Join(BaseDir, "asclepius.log")
	DbPath = filepath.Join(BaseDir, "asclepius.db")

	if err := InitApp(); err != nil {
		fmt.Printf("Error initializing application environment: %s\n",
			err.Error())
		return err
	}

	return nil
} // func SetBaseDir(path string) error

// GetLogger tries to create a Logger for the given log source.
func GetLogger(dom logdomain.ID) (*log.Logger, error) {
	var (
		err error
		fh  *os.File
	)

	if err = InitApp(); err != nil {
		return nil, fmt.Errorf("Error initializing application environment: %s",
			err.Error())
	}

	var name = fmt.Sprintf("%s.%s ",
		AppName,
		dom)

	if fh, err = os.OpenFile(LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err != nil {
		return nil, fmt.Errorf("Error opening log file %s: %s",
			LogPath,
			err.Error())
	}

	var writer = io.MultiWriter(os.Stdout, fh)

	var filter = &logutils.LevelFilter{
		Levels:   LogLevels,
		MinLevel: PackageLevels[dom],
		Writer:   writer,
	}

	var logger = log.New(filter, name, log.Ldate|log.Ltime|log.Lshortfile)

	return logger, nil
} // func GetLogger(dom logdomain.ID) (*log.Logger, error)

// InitApp performs some basic preparations for the application to run.
// Currently, this means creating the BaseDir, if it does not exist.
func InitApp() error {
	var (
		err    error
		exists bool
	)

	if exists, err = krylib.Fexists(BaseDir); err != nil {
		return fmt.Errorf("Error checking BaseDir %s: %s",
			BaseDir,
			err.Error())
	} else if !exists {
		if err = os.Mkdir(BaseDir, 0755); err != nil {
			return fmt.Errorf("Error creating BaseDir %s: %s",
				BaseDir,
				err.Error())
		}
	}

	return nil
} // func InitApp() error

// GetUUID returns a randomized UUID.
func GetUUID() string {
	return uuid.NewRandom().String()
} // func GetUUID() string
