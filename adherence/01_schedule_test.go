// /home/krylon/go/src/github.com/blicero/asclepius/adherence/01_schedule_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 09. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-23 19:10:17 krylon>

package adherence

import (
	"testing"
	"time"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/objects"
)

func defaultSlots() []objects.Alarm {
	return []objects.Alarm{
		{Index: 0, Hour: 8, Minute: 0, Enabled: true},
		{Index: 1, Hour: 13, Minute: 0, Enabled: true},
		{Index: 2, Hour: 20, Minute: 0, Enabled: true},
	}
} // func defaultSlots() []objects.Alarm

func TestNextDose(t *testing.T) {
	type testCase struct {
		name      string
		alarms    []objects.Alarm
		now       time.Time
		expectIdx int // -1 means no dose expected
		expectDay int // day-of-month of the expected slot
		expectHr  int
	}

	var day = func(d, h, m int) time.Time {
		return time.Date(2023, 3, d, h, m, 0, 0, time.Local)
	}

	var disabledMornings = defaultSlots()
	disabledMornings[0].Enabled = false

	var allOff = defaultSlots()
	for i := range allOff {
		allOff[i].Enabled = false
	}

	var cases = []testCase{
		{
			name:      "EarlyMorning",
			alarms:    defaultSlots(),
			now:       day(9, 6, 30),
			expectIdx: 0,
			expectDay: 9,
			expectHr:  8,
		},
		{
			name:      "Midday",
			alarms:    defaultSlots(),
			now:       day(9, 9, 15),
			expectIdx: 1,
			expectDay: 9,
			expectHr:  13,
		},
		{
			name:      "ExactlyOnSlot",
			alarms:    defaultSlots(),
			now:       day(9, 13, 0),
			expectIdx: 2,
			expectDay: 9,
			expectHr:  20,
		},
		{
			name:      "LateNightWrapsToTomorrow",
			alarms:    defaultSlots(),
			now:       day(9, 22, 45),
			expectIdx: 0,
			expectDay: 10,
			expectHr:  8,
		},
		{
			name:      "DisabledSlotIsSkipped",
			alarms:    disabledMornings,
			now:       day(9, 6, 30),
			expectIdx: 1,
			expectDay: 9,
			expectHr:  13,
		},
		{
			name:      "NothingEnabled",
			alarms:    allOff,
			now:       day(9, 6, 30),
			expectIdx: -1,
		},
	}

	for _, c := range cases {
		var ref = NextDose(c.alarms, c.now)

		if c.expectIdx == -1 {
			if ref != nil {
				t.Errorf("%s: expected no dose, got slot %d at %s",
					c.name,
					ref.Index,
					ref.Scheduled.Format(common.TimestampFormat))
			}
			continue
		}

		if ref == nil {
			t.Errorf("%s: expected slot %d, got none",
				c.name,
				c.expectIdx)
		} else if ref.Index != c.expectIdx ||
			ref.Scheduled.Day() != c.expectDay ||
			ref.Scheduled.Hour() != c.expectHr {
			t.Errorf("%s: unexpected dose: slot %d at %s",
				c.name,
				ref.Index,
				ref.Scheduled.Format(common.TimestampFormat))
		}
	}
} // func TestNextDose(t *testing.T)

func TestMostRecentScheduled(t *testing.T) {
	var a = objects.Alarm{Index: 0, Hour: 8, Minute: 0, Enabled: true}

	var now = time.Date(2023, 3, 9, 10, 0, 0, 0, time.Local)
	var slot = a.MostRecentScheduled(now)

	if slot.Day() != 9 || slot.Hour() != 8 {
		t.Errorf("Slot should be today 08:00, got %s",
			slot.Format(common.TimestampFormat))
	}

	// Before the slot time, the reference must shift to yesterday.
	now = time.Date(2023, 3, 9, 7, 30, 0, 0, time.Local)
	slot = a.MostRecentScheduled(now)

	if slot.Day() != 8 || slot.Hour() != 8 {
		t.Errorf("Slot should be yesterday 08:00, got %s",
			slot.Format(common.TimestampFormat))
	}

	if slot.After(now) {
		t.Errorf("MostRecentScheduled returned a future instant: %s",
			slot.Format(common.TimestampFormat))
	}
} // func TestMostRecentScheduled(t *testing.T)
