// /home/krylon/go/src/github.com/blicero/asclepius/adherence/schedule.go
// -*- mode: go; coding: utf-8; -*-
// Created on 07. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-21 20:31:40 krylon>

package adherence

import (
	"time"

	"github.com/blicero/asclepius/objects"
)

// DoseRef identifies one concrete occurrence of an alarm slot.
type DoseRef struct {
	Index     int
	Scheduled time.Time
}

// NextDose determines the next scheduled dose relative to now. Alarms
// are scanned in slot order; the first enabled one whose slot time
// today is strictly after now wins. If no enabled alarm is left today,
// the first enabled alarm's slot tomorrow is returned. If no alarm is
// enabled at all, NextDose returns nil.
func NextDose(alarms []objects.Alarm, now time.Time) *DoseRef {
	for i := range alarms {
		var a = &alarms[i]

		if !a.Enabled {
			continue
		}

		var slot = a.ScheduledFor(now)

		if slot.After(now) {
			return &DoseRef{
				Index:     a.Index,
				Scheduled: slot,
			}
		}
	}

	for i := range alarms {
		var a = &alarms[i]

		if !a.Enabled {
			continue
		}

		return &DoseRef{
			Index:     a.Index,
			Scheduled: a.ScheduledFor(now.AddDate(0, 0, 1)),
		}
	}

	return nil
} // func NextDose(alarms []objects.Alarm, now time.Time) *DoseRef
