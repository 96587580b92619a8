// /home/krylon/go/src/github.com/blicero/asclepius/adherence/overdue.go
// -*- mode: go; coding: utf-8; -*-
// Created on 07. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-21 20:44:09 krylon>

package adherence

import (
	"time"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/objects"
)

// NotifyWindowMinutes is the upper bound on how long after its slot
// time a dose is still worth notifying about. Beyond that (e.g. after
// a long outage) a notification would be more annoying than helpful.
const NotifyWindowMinutes = 120

// Overdue decides whether the alarm's dose today is overdue right now,
// given the user's delay threshold in minutes. It returns the verdict
// together with the elapsed minutes since the slot time (negative if
// the slot is still ahead).
func Overdue(a *objects.Alarm, now time.Time, delayMinutes int) (bool, int) {
	var (
		scheduled = a.ScheduledFor(now)
		elapsed   = common.MinutesBetween(scheduled, now)
	)

	return elapsed >= delayMinutes && elapsed < NotifyWindowMinutes, elapsed
} // func Overdue(a *objects.Alarm, now time.Time, delayMinutes int) (bool, int)

// ShouldNotify performs the full overdue-and-notifiable check for one
// (user, alarm) pair: the alarm must be enabled and overdue per the
// user's threshold, the dose must not be logged yet, and no missed-dose
// mail must have been attempted for it today. The caller is expected to
// send the mail and record the attempt if ShouldNotify says yes.
func ShouldNotify(db Store, u *objects.User, a *objects.Alarm, now time.Time) (bool, int, error) {
	if !u.NotifyEnabled || !a.Enabled {
		return false, 0, nil
	}

	var due, elapsed = Overdue(a, now, u.NotifyDelay)

	if !due {
		return false, elapsed, nil
	}

	var (
		err error
		day = common.DayKey(now)
		l   *objects.AdherenceLog
		n   *objects.EmailNotification
	)

	if l, err = db.LogGetByDay(u.ID, a.Index, day); err != nil {
		return false, elapsed, err
	} else if l != nil {
		// Dose was logged, nothing to nag about.
		return false, elapsed, nil
	} else if n, err = db.NotificationGetByDay(u.ID, a.Index, day, objects.MailMissedDose); err != nil {
		return false, elapsed, err
	} else if n != nil {
		return false, elapsed, nil
	}

	return true, elapsed, nil
} // func ShouldNotify(db Store, u *objects.User, a *objects.Alarm, now time.Time) (bool, int, error)
