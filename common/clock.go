// /home/krylon/go/src/github.com/blicero/asclepius/common/clock.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-19 17:40:28 krylon>

package common

import (
	"fmt"
	"time"
)

// All day-boundary arithmetic uses the local wall clock. There is no
// per-user timezone, the entire application lives in one timezone.

// DayStart returns midnight at the beginning of the day t falls on.
func DayStart(t time.Time) time.Time {
	var y, m, d = t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
} // func DayStart(t time.Time) time.Time

// DayEnd returns the last instant of the day t falls on.
func DayEnd(t time.Time) time.Time {
	return DayStart(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
} // func DayEnd(t time.Time) time.Time

// DayKey returns the calendar day t falls on, rendered as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(TimestampFormatDate)
} // func DayKey(t time.Time) string

// MinutesBetween returns (b - a) in whole minutes. The result is
// negative if b is before a.
func MinutesBetween(a, b time.Time) int {
	return int(b.Sub(a) / time.Minute)
} // func MinutesBetween(a, b time.Time) int

// FormatClock renders an hour and minute in 12-hour notation, e.g.
// (8, 0) -> "8:00 AM", (0, 5) -> "12:05 AM", (13, 0) -> "1:00 PM".
func FormatClock(hour, minute int) string {
	var (
		h      = hour
		period = "AM"
	)

	if hour >= 12 {
		period = "PM"
	}

	if hour > 12 {
		h = hour - 12
	} else if hour == 0 {
		h = 12
	}

	return fmt.Sprintf("%d:%02d %s",
		h,
		minute,
		period)
} // func FormatClock(hour, minute int) string
