// /home/krylon/go/src/github.com/blicero/asclepius/adherence/stats.go
// -*- mode: go; coding: utf-8; -*-
// Created on 08. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-23 18:27:19 krylon>

package adherence

import (
	"math"
	"sort"
	"time"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/objects"
	"github.com/blicero/asclepius/objects/dosestatus"
)

// streakLookbackDays bounds how far into the past the current-streak
// scan walks.
const streakLookbackDays = 365

func pct(taken, total int) int {
	return int(math.Round(float64(taken) / float64(total) * 100))
} // func pct(taken, total int) int

// Summarize computes the full set of adherence statistics from a
// collection of AdherenceLogs. The logs are assumed to be filtered to
// one user already; for meaningful streaks they should reach as far
// back as the streak lookback window.
func Summarize(logs []objects.AdherenceLog, now time.Time) *objects.Summary {
	var s = &objects.Summary{
		AdherenceRate: 100,
		TotalDoses:    len(logs),
	}

	var delaySum, delayCnt int64

	for i := range logs {
		var l = &logs[i]

		if l.Taken() {
			s.TakenDoses++
		}

		switch l.Status {
		case dosestatus.TakenOnTime:
			s.OnTimeDoses++
		case dosestatus.TakenLate:
			s.LateDoses++
		case dosestatus.Missed:
			s.MissedDoses++
		}

		if l.Delay != nil && *l.Delay > 0 {
			delaySum += *l.Delay
			delayCnt++
		}
	}

	if s.TotalDoses > 0 {
		s.AdherenceRate = pct(s.TakenDoses, s.TotalDoses)
	}

	if delayCnt > 0 {
		s.AvgDelay = int(math.Round(float64(delaySum) / float64(delayCnt)))
	}

	var byDay = groupByDay(logs)

	s.DaysTracked = len(byDay)
	s.CurrentStreak = currentStreak(byDay, now)
	s.LongestStreak = longestStreak(byDay)
	s.Weekly = weeklyBreakdown(byDay, now)
	s.Monthly = monthlyBreakdown(logs, now)
	s.Slots = slotBreakdown(logs)

	return s
} // func Summarize(logs []objects.AdherenceLog, now time.Time) *objects.Summary

func groupByDay(logs []objects.AdherenceLog) map[string][]*objects.AdherenceLog {
	var byDay = make(map[string][]*objects.AdherenceLog)

	for i := range logs {
		var day = logs[i].Day()
		byDay[day] = append(byDay[day], &logs[i])
	}

	return byDay
} // func groupByDay(logs []objects.AdherenceLog) map[string][]*objects.AdherenceLog

func allTaken(day []*objects.AdherenceLog) bool {
	for _, l := range day {
		if !l.Taken() {
			return false
		}
	}

	return true
} // func allTaken(day []*objects.AdherenceLog) bool

// currentStreak counts consecutive good days walking backward from
// today. A day with no logs at all breaks the streak, except for today
// itself, which is skipped: today's doses may simply not have been
// logged yet.
func currentStreak(byDay map[string][]*objects.AdherenceLog, now time.Time) int {
	var (
		streak int
		today  = common.DayStart(now)
	)

	for i := 0; i <= streakLookbackDays; i++ {
		var day = byDay[common.DayKey(today.AddDate(0, 0, -i))]

		if len(day) == 0 {
			if i == 0 {
				continue
			}
			break
		}

		if !allTaken(day) {
			break
		}

		streak++
	}

	return streak
} // func currentStreak(byDay map[string][]*objects.AdherenceLog, now time.Time) int

// longestStreak scans all recorded days in chronological order,
// counting runs of good days. In contrast to currentStreak, days
// without any logs are simply absent from the scan and do not reset
// the counter; only a present day with a missed dose does. The
// asymmetry is deliberate, it matches the behavior users have come to
// rely on.
func longestStreak(byDay map[string][]*objects.AdherenceLog) int {
	var days = make([]string, 0, len(byDay))

	for day := range byDay {
		days = append(days, day)
	}

	// Day keys are YYYY-MM-DD, lexicographic order is chronological
	// order.
	sort.Strings(days)

	var run, best int

	for _, day := range days {
		if allTaken(byDay[day]) {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}

	return best
} // func longestStreak(byDay map[string][]*objects.AdherenceLog) int

func weeklyBreakdown(byDay map[string][]*objects.AdherenceLog, now time.Time) []objects.DayBucket {
	var (
		today   = common.DayStart(now)
		buckets = make([]objects.DayBucket, 0, 7)
	)

	for i := 6; i >= 0; i-- {
		var (
			date = today.AddDate(0, 0, -i)
			day  = byDay[common.DayKey(date)]
			b    = objects.DayBucket{
				Day:   date.Weekday().String()[:3],
				Date:  common.DayKey(date),
				Total: len(day),
			}
		)

		for _, l := range day {
			if l.Taken() {
				b.Taken++
			}
		}

		if b.Total > 0 {
			var p = pct(b.Taken, b.Total)
			b.Percentage = &p
		}

		buckets = append(buckets, b)
	}

	return buckets
} // func weeklyBreakdown(byDay map[string][]*objects.AdherenceLog, now time.Time) []objects.DayBucket

func monthlyBreakdown(logs []objects.AdherenceLog, now time.Time) []objects.MonthBucket {
	var (
		buckets        = make([]objects.MonthBucket, 0, 4)
		year, month, _ = now.Date()
	)

	for i := 0; i < 4; i++ {
		var (
			first = time.Date(year, month-time.Month(i), 1, 0, 0, 0, 0, now.Location())
			b     = objects.MonthBucket{
				Month: first.Month().String(),
			}
		)

		for j := range logs {
			var l = &logs[j]

			if l.Scheduled.Year() != first.Year() || l.Scheduled.Month() != first.Month() {
				continue
			}

			b.Total++
			if l.Taken() {
				b.Taken++
			}
		}

		if b.Total > 0 {
			b.Adherence = pct(b.Taken, b.Total)
		}

		buckets = append(buckets, b)
	}

	return buckets
} // func monthlyBreakdown(logs []objects.AdherenceLog, now time.Time) []objects.MonthBucket

func slotBreakdown(logs []objects.AdherenceLog) [objects.SlotCount]objects.SlotBucket {
	var buckets [objects.SlotCount]objects.SlotBucket

	for idx := 0; idx < objects.SlotCount; idx++ {
		buckets[idx].Index = idx
		buckets[idx].Label = objects.SlotLabels[idx]
	}

	for i := range logs {
		var l = &logs[i]

		if l.AlarmIndex < 0 || l.AlarmIndex >= objects.SlotCount {
			continue
		}

		buckets[l.AlarmIndex].Total++
		if l.Taken() {
			buckets[l.AlarmIndex].Taken++
		}
	}

	for idx := range buckets {
		if buckets[idx].Total > 0 {
			buckets[idx].Adherence = pct(buckets[idx].Taken, buckets[idx].Total)
		}
	}

	return buckets
} // func slotBreakdown(logs []objects.AdherenceLog) [objects.SlotCount]objects.SlotBucket
