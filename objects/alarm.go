// /home/krylon/go/src/github.com/blicero/asclepius/objects/alarm.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-21 19:33:40 krylon>

package objects

import (
	"time"

	"github.com/blicero/asclepius/common"
)

//go:generate ffjson alarm.go

// SlotCount is the fixed number of Alarm slots per user.
const SlotCount = 3

// SlotLabels are the canonical names of the three Alarm slots.
var SlotLabels = [SlotCount]string{
	"Morning",
	"Afternoon",
	"Evening",
}

// Alarm is one of the three daily dose times of a user. There is
// exactly one Alarm per (user, index), it is only ever updated in
// place, never deleted.
type Alarm struct {
	ID      int64     `json:"-"`
	UserID  int64     `json:"-"`
	Index   int       `json:"index"`
	Hour    int       `json:"hour"`
	Minute  int       `json:"minute"`
	Enabled bool      `json:"enabled"`
	Changed time.Time `json:"-"`
}

// Label returns the canonical name of the Alarm's slot.
func (a *Alarm) Label() string {
	if a.Index < 0 || a.Index >= SlotCount {
		return "Unknown"
	}

	return SlotLabels[a.Index]
} // func (a *Alarm) Label() string

// TimeString renders the Alarm's time of day in 12-hour notation.
func (a *Alarm) TimeString() string {
	return common.FormatClock(a.Hour, a.Minute)
} // func (a *Alarm) TimeString() string

// ScheduledFor returns the Alarm's slot time on the day ref falls on.
func (a *Alarm) ScheduledFor(ref time.Time) time.Time {
	var y, m, d = ref.Date()
	return time.Date(y, m, d, a.Hour, a.Minute, 0, 0, ref.Location())
} // func (a *Alarm) ScheduledFor(ref time.Time) time.Time

// MostRecentScheduled returns the most recent occurrence of the
// Alarm's slot relative to now, i.e. today's slot time, or yesterday's
// if today's is still in the future. The result is never after now.
func (a *Alarm) MostRecentScheduled(now time.Time) time.Time {
	var slot = a.ScheduledFor(now)

	if slot.After(now) {
		slot = slot.AddDate(0, 0, -1)
	}

	return slot
} // func (a *Alarm) MostRecentScheduled(now time.Time) time.Time

// DefaultAlarms returns the Alarms installed for a brand-new user:
// 08:00, 13:00, 20:00, all enabled.
func DefaultAlarms(userID int64) []Alarm {
	return []Alarm{
		{UserID: userID, Index: 0, Hour: 8, Minute: 0, Enabled: true},
		{UserID: userID, Index: 1, Hour: 13, Minute: 0, Enabled: true},
		{UserID: userID, Index: 2, Hour: 20, Minute: 0, Enabled: true},
	}
} // func DefaultAlarms(userID int64) []Alarm
