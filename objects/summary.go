// /home/krylon/go/src/github.com/blicero/asclepius/objects/summary.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-21 20:09:48 krylon>

package objects

//go:generate ffjson summary.go

// DayBucket is one day's worth of doses in the weekly breakdown.
// Percentage is nil for days with no doses at all ("N/A").
type DayBucket struct {
	Day        string `json:"day"`
	Date       string `json:"date"`
	Taken      int    `json:"takenCount"`
	Total      int    `json:"totalCount"`
	Percentage *int   `json:"percentage"`
}

// MonthBucket is one calendar month's adherence in the monthly
// breakdown.
type MonthBucket struct {
	Month     string `json:"month"`
	Taken     int    `json:"takenCount"`
	Total     int    `json:"totalCount"`
	Adherence int    `json:"adherence"`
}

// SlotBucket is the adherence of one alarm slot across the queried
// window, for comparing morning/afternoon/evening performance.
type SlotBucket struct {
	Index     int    `json:"index"`
	Label     string `json:"label"`
	Taken     int    `json:"takenCount"`
	Total     int    `json:"totalCount"`
	Adherence int    `json:"adherence"`
}

// Summary is the full set of adherence statistics derived from a
// collection of AdherenceLogs.
type Summary struct {
	AdherenceRate int                   `json:"adherenceRate"`
	TotalDoses    int                   `json:"totalDoses"`
	TakenDoses    int                   `json:"takenDoses"`
	OnTimeDoses   int                   `json:"onTimeDoses"`
	LateDoses     int                   `json:"lateDoses"`
	MissedDoses   int                   `json:"missedDoses"`
	AvgDelay      int                   `json:"avgDelay"`
	CurrentStreak int                   `json:"currentStreak"`
	LongestStreak int                   `json:"longestStreak"`
	DaysTracked   int                   `json:"totalDaysTracked"`
	Weekly        []DayBucket           `json:"weekly"`
	Monthly       []MonthBucket         `json:"monthly"`
	Slots         [SlotCount]SlotBucket `json:"timeOfDay"`
}
