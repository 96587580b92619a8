// /home/krylon/go/src/github.com/blicero/asclepius/adherence/dose.go
// -*- mode: go; coding: utf-8; -*-
// Created on 08. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-23 18:49:55 krylon>

package adherence

import (
	"fmt"
	"time"

	"github.com/blicero/asclepius/objects"
	"github.com/blicero/asclepius/objects/dosestatus"
)

//go:generate ffjson dose.go

// maxBackfillDays is how far in the past a dose may be logged.
const maxBackfillDays = 7

// DoseRequest is a request to record the outcome of one dose.
// ScheduledTime is optional; when absent, the most recent occurrence
// of the alarm's slot is used.
type DoseRequest struct {
	AlarmIndex    int    `json:"alarmIndex" validate:"min=0,max=2"`
	Status        string `json:"status" validate:"required"`
	DelayMinutes  *int64 `json:"delayMinutes,omitempty" validate:"omitempty,min=0"`
	ScheduledTime string `json:"scheduledTime,omitempty"`
}

// LogDose validates a DoseRequest and records the outcome. Validation
// happens eagerly and in a fixed order, before anything is written;
// the final insert relies on the store's uniqueness guarantee, so of
// two racing attempts for the same slot and day exactly one succeeds.
func LogDose(db Store, u *objects.User, req *DoseRequest, now time.Time) (*objects.AdherenceLog, error) {
	if req.AlarmIndex < 0 || req.AlarmIndex >= objects.SlotCount {
		return nil, &ValidationError{
			Msg: fmt.Sprintf("Invalid alarmIndex %d (must be 0, 1, or 2)",
				req.AlarmIndex),
		}
	}

	var (
		err    error
		status dosestatus.Status
	)

	if status, err = dosestatus.Parse(req.Status); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	if req.DelayMinutes != nil && *req.DelayMinutes < 0 {
		return nil, &ValidationError{
			Msg: "Invalid delayMinutes (must not be negative)",
		}
	}

	var scheduled time.Time

	if req.ScheduledTime != "" {
		if scheduled, err = time.Parse(time.RFC3339, req.ScheduledTime); err != nil {
			return nil, &ValidationError{
				Msg: fmt.Sprintf("Invalid scheduledTime %q: %s",
					req.ScheduledTime,
					err.Error()),
			}
		}

		scheduled = scheduled.In(now.Location())

		if scheduled.After(now) {
			return nil, &ValidationError{
				Msg: "Cannot log doses scheduled in the future",
			}
		} else if scheduled.Before(now.AddDate(0, 0, -maxBackfillDays)) {
			return nil, &ValidationError{
				Msg: fmt.Sprintf("Cannot log doses older than %d days",
					maxBackfillDays),
			}
		}
	}

	var alarm *objects.Alarm

	if alarm, err = db.AlarmGetByIndex(u.ID, req.AlarmIndex); err != nil {
		return nil, err
	} else if alarm == nil {
		return nil, &NotFoundError{What: "Alarm"}
	}

	if scheduled.IsZero() {
		scheduled = alarm.MostRecentScheduled(now)
	}

	var l = &objects.AdherenceLog{
		UserID:     u.ID,
		AlarmIndex: req.AlarmIndex,
		Scheduled:  scheduled,
		Status:     status,
		Delay:      req.DelayMinutes,
	}

	if status.Taken() {
		var takenAt = now
		l.TakenAt = &takenAt
	}

	var dup *objects.AdherenceLog

	if dup, err = db.LogGetByDay(u.ID, req.AlarmIndex, l.Day()); err != nil {
		return nil, err
	} else if dup != nil {
		return nil, &ConflictError{
			Msg: "Dose already logged for this time today",
		}
	}

	// The read check above is best-effort; the store's uniqueness
	// constraint has the final word.
	if err = db.LogAdd(l); err != nil {
		return nil, err
	}

	return l, nil
} // func LogDose(db Store, u *objects.User, req *DoseRequest, now time.Time) (*objects.AdherenceLog, error)
