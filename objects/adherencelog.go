// /home/krylon/go/src/github.com/blicero/asclepius/objects/adherencelog.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-21 19:36:12 krylon>

package objects

import (
	"time"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/objects/dosestatus"
)

//go:generate ffjson adherencelog.go

// AdherenceLog records the actual outcome of one scheduled dose. Once
// created, it is never modified or deleted.
// Invariant: at most one AdherenceLog per (user, alarm slot, calendar
// day of Scheduled).
// TakenAt is set iff the dose was not missed; Delay is set only for
// doses taken late.
type AdherenceLog struct {
	ID         int64             `json:"id"`
	UserID     int64             `json:"-"`
	AlarmIndex int               `json:"alarmIndex"`
	Scheduled  time.Time         `json:"scheduledTime"`
	TakenAt    *time.Time        `json:"takenAt,omitempty"`
	Status     dosestatus.Status `json:"status"`
	Delay      *int64            `json:"delayMinutes,omitempty"`
}

// Day returns the calendar day the dose was scheduled on.
func (l *AdherenceLog) Day() string {
	return common.DayKey(l.Scheduled)
} // func (l *AdherenceLog) Day() string

// Taken returns true unless the dose was missed.
func (l *AdherenceLog) Taken() bool {
	return l.Status.Taken()
} // func (l *AdherenceLog) Taken() bool
