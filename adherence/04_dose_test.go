// /home/krylon/go/src/github.com/blicero/asclepius/adherence/04_dose_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 10. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-23 19:55:08 krylon>

package adherence

import (
	"errors"
	"testing"
	"time"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/objects"
)

func TestLogDoseValidation(t *testing.T) {
	type testCase struct {
		name string
		req  DoseRequest
	}

	var (
		db  = newFakeStore()
		u   = &objects.User{ID: 1, Email: "odysseus@example.com"}
		now = time.Date(2023, 3, 10, 9, 0, 0, 0, time.Local)
	)

	db.addAlarm(&objects.Alarm{UserID: 1, Index: 0, Hour: 8, Minute: 0, Enabled: true})

	var badDelay int64 = -5

	var cases = []testCase{
		{
			name: "IndexOutOfRange",
			req:  DoseRequest{AlarmIndex: 3, Status: "taken_on_time"},
		},
		{
			name: "BogusStatus",
			req:  DoseRequest{AlarmIndex: 0, Status: "partaken"},
		},
		{
			name: "NegativeDelay",
			req: DoseRequest{
				AlarmIndex:   0,
				Status:       "taken_late",
				DelayMinutes: &badDelay,
			},
		},
		{
			name: "UnparseableTimestamp",
			req: DoseRequest{
				AlarmIndex:    0,
				Status:        "taken_on_time",
				ScheduledTime: "yesterday-ish",
			},
		},
		{
			name: "FutureTimestamp",
			req: DoseRequest{
				AlarmIndex:    0,
				Status:        "taken_on_time",
				ScheduledTime: now.Add(time.Hour).Format(time.RFC3339),
			},
		},
		{
			name: "EightDaysAgo",
			req: DoseRequest{
				AlarmIndex:    0,
				Status:        "taken_on_time",
				ScheduledTime: now.AddDate(0, 0, -8).Format(time.RFC3339),
			},
		},
	}

	for _, c := range cases {
		var (
			err  error
			verr *ValidationError
		)

		if _, err = LogDose(db, u, &c.req, now); err == nil {
			t.Errorf("%s: LogDose should have failed", c.name)
		} else if !errors.As(err, &verr) {
			t.Errorf("%s: expected a validation error, got %T (%s)",
				c.name,
				err,
				err.Error())
		}
	}

	// A valid request referencing a slot that has no Alarm row is a
	// not-found, not a validation error.
	var (
		err   error
		nferr *NotFoundError
		req   = DoseRequest{AlarmIndex: 1, Status: "taken_on_time"}
	)

	if _, err = LogDose(db, u, &req, now); err == nil {
		t.Error("Logging against a missing Alarm should fail")
	} else if !errors.As(err, &nferr) {
		t.Errorf("Expected a not-found error, got %T (%s)",
			err,
			err.Error())
	}
} // func TestLogDoseValidation(t *testing.T)

func TestLogDoseResolution(t *testing.T) {
	var (
		err error
		db  = newFakeStore()
		u   = &objects.User{ID: 1, Email: "odysseus@example.com"}
		l   *objects.AdherenceLog
	)

	db.addAlarm(&objects.Alarm{UserID: 1, Index: 2, Hour: 20, Minute: 0, Enabled: true})

	// At 09:00, the 20:00 slot has not happened yet today, so an
	// implicit scheduled time must resolve to yesterday's occurrence.
	var now = time.Date(2023, 3, 10, 9, 0, 0, 0, time.Local)
	var req = DoseRequest{AlarmIndex: 2, Status: "missed"}

	if l, err = LogDose(db, u, &req, now); err != nil {
		t.Fatalf("LogDose failed: %s", err.Error())
	} else if l.Scheduled.Day() != 9 || l.Scheduled.Hour() != 20 {
		t.Errorf("Scheduled time should be yesterday 20:00, got %s",
			l.Scheduled.Format(common.TimestampFormat))
	} else if l.TakenAt != nil {
		t.Error("A missed dose must not have a takenAt timestamp")
	}

	// Late in the evening the same request resolves to today.
	now = time.Date(2023, 3, 10, 21, 30, 0, 0, time.Local)
	var delay int64 = 90
	req = DoseRequest{AlarmIndex: 2, Status: "taken_late", DelayMinutes: &delay}

	if l, err = LogDose(db, u, &req, now); err != nil {
		t.Fatalf("LogDose failed: %s", err.Error())
	} else if l.Scheduled.Day() != 10 {
		t.Errorf("Scheduled time should be today, got %s",
			l.Scheduled.Format(common.TimestampFormat))
	} else if l.TakenAt == nil || !l.TakenAt.Equal(now) {
		t.Errorf("A taken dose must carry takenAt = now, got %v", l.TakenAt)
	} else if l.Delay == nil || *l.Delay != 90 {
		t.Errorf("Delay should be 90, got %v", l.Delay)
	}
} // func TestLogDoseResolution(t *testing.T)

func TestLogDoseDuplicate(t *testing.T) {
	var (
		err error
		db  = newFakeStore()
		u   = &objects.User{ID: 1, Email: "odysseus@example.com"}
		now = time.Date(2023, 3, 10, 9, 0, 0, 0, time.Local)
		req = DoseRequest{AlarmIndex: 0, Status: "taken_on_time"}
	)

	db.addAlarm(&objects.Alarm{UserID: 1, Index: 0, Hour: 8, Minute: 0, Enabled: true})

	if _, err = LogDose(db, u, &req, now); err != nil {
		t.Fatalf("First LogDose failed: %s", err.Error())
	}

	var cerr *ConflictError

	if _, err = LogDose(db, u, &req, now.Add(time.Minute)); err == nil {
		t.Error("Second LogDose for the same slot and day should have failed")
	} else if !errors.As(err, &cerr) {
		t.Errorf("Expected a conflict error, got %T (%s)",
			err,
			err.Error())
	}
} // func TestLogDoseDuplicate(t *testing.T)
