// /home/krylon/go/src/github.com/blicero/asclepius/adherence/02_overdue_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 09. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-23 19:21:44 krylon>

package adherence

import (
	"testing"
	"time"

	"github.com/blicero/asclepius/objects"
	"github.com/blicero/asclepius/objects/dosestatus"
)

func TestOverdue(t *testing.T) {
	type testCase struct {
		name   string
		now    time.Time
		delay  int
		expect bool
	}

	var (
		a   = objects.Alarm{Index: 0, Hour: 8, Minute: 0, Enabled: true}
		day = func(h, m int) time.Time {
			return time.Date(2023, 3, 9, h, m, 0, 0, time.Local)
		}
	)

	var cases = []testCase{
		{"PastThreshold", day(8, 16), 15, true},
		{"BeforeThreshold", day(8, 10), 15, false},
		{"ExactlyAtThreshold", day(8, 15), 15, true},
		{"BeyondWindow", day(10, 30), 15, false},
		{"JustInsideWindow", day(9, 59), 15, true},
		{"ExactlyAtWindow", day(10, 0), 15, false},
		{"SlotStillAhead", day(7, 30), 15, false},
	}

	for _, c := range cases {
		var due, _ = Overdue(&a, c.now, c.delay)

		if due != c.expect {
			t.Errorf("%s: Overdue at %02d:%02d with delay %d = %v (expected %v)",
				c.name,
				c.now.Hour(),
				c.now.Minute(),
				c.delay,
				due,
				c.expect)
		}
	}
} // func TestOverdue(t *testing.T)

func TestShouldNotify(t *testing.T) {
	var (
		err     error
		db      = newFakeStore()
		now     = time.Date(2023, 3, 9, 8, 30, 0, 0, time.Local)
		takenAt = now
		u       = &objects.User{
			ID:            1,
			Email:         "ariadne@example.com",
			NotifyEnabled: true,
			NotifyDelay:   15,
		}
		a = &objects.Alarm{UserID: 1, Index: 0, Hour: 8, Minute: 0, Enabled: true}
	)

	db.addAlarm(a)

	var notify bool

	if notify, _, err = ShouldNotify(db, u, a, now); err != nil {
		t.Fatalf("ShouldNotify failed: %s", err.Error())
	} else if !notify {
		t.Error("Unlogged dose 30 minutes past its slot should be notifiable")
	}

	// Once the dose is logged, no notification is due.
	var l = &objects.AdherenceLog{
		UserID:     1,
		AlarmIndex: 0,
		Scheduled:  a.ScheduledFor(now),
		TakenAt:    &takenAt,
		Status:     dosestatus.TakenLate,
	}

	if err = db.LogAdd(l); err != nil {
		t.Fatalf("Cannot add log: %s", err.Error())
	} else if notify, _, err = ShouldNotify(db, u, a, now); err != nil {
		t.Fatalf("ShouldNotify failed: %s", err.Error())
	} else if notify {
		t.Error("A logged dose must not be notifiable")
	}

	// Second alarm, already notified about.
	var b = &objects.Alarm{UserID: 1, Index: 1, Hour: 8, Minute: 0, Enabled: true}
	db.addAlarm(b)

	var n = &objects.EmailNotification{
		UserID:     1,
		AlarmIndex: 1,
		Scheduled:  b.ScheduledFor(now),
		MailType:   objects.MailMissedDose,
		Success:    false,
	}

	if err = db.NotificationAdd(n); err != nil {
		t.Fatalf("Cannot record notification: %s", err.Error())
	} else if notify, _, err = ShouldNotify(db, u, b, now); err != nil {
		t.Fatalf("ShouldNotify failed: %s", err.Error())
	} else if notify {
		t.Error("A dose with a recorded mail attempt must not be notifiable, even if the send failed")
	}

	// Opted-out users are never notified.
	var quiet = &objects.User{ID: 1, NotifyEnabled: false, NotifyDelay: 15}
	var c = &objects.Alarm{UserID: 1, Index: 2, Hour: 8, Minute: 0, Enabled: true}
	db.addAlarm(c)

	if notify, _, err = ShouldNotify(db, quiet, c, now); err != nil {
		t.Fatalf("ShouldNotify failed: %s", err.Error())
	} else if notify {
		t.Error("Opted-out user must not be notified")
	}
} // func TestShouldNotify(t *testing.T)
