// /home/krylon/go/src/github.com/blicero/asclepius/adherence/store.go
// -*- mode: go; coding: utf-8; -*-
// Created on 07. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-21 20:25:56 krylon>

// Package adherence implements the temporal logic of the application:
// resolving which dose a point in time refers to, deciding when a dose
// is overdue enough to warrant a notification, recording dose
// outcomes, and aggregating the recorded outcomes into statistics.
package adherence

import "github.com/blicero/asclepius/objects"

// Store is the read/write surface the engine needs from the backing
// store. The database package provides the real implementation; tests
// use an in-memory fake.
//
// LogAdd and NotificationAdd must be atomic insert-if-absent with
// respect to the per-day uniqueness invariants and return a
// *ConflictError when the row already exists. That constraint, not any
// in-memory lock, is what keeps concurrent writers safe.
type Store interface {
	AlarmGetByIndex(userID int64, idx int) (*objects.Alarm, error)
	LogAdd(l *objects.AdherenceLog) error
	LogGetByDay(userID int64, idx int, day string) (*objects.AdherenceLog, error)
	NotificationAdd(n *objects.EmailNotification) error
	NotificationGetByDay(userID int64, idx int, day, mailType string) (*objects.EmailNotification, error)
}
