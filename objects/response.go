// /home/krylon/go/src/github.com/blicero/asclepius/objects/response.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-21 20:02:17 krylon>

package objects

import "time"

//go:generate ffjson response.go

// Response is the envelope the backend wraps around every reply to a
// client. Payload-bearing replies embed it.
type Response struct {
	ID      int64  `json:"id"`
	Status  bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AlarmListResponse is the reply to a request for a user's Alarms.
type AlarmListResponse struct {
	Response
	Alarms []Alarm `json:"alarms"`
}

// ToggleResponse is the reply to toggling an Alarm.
type ToggleResponse struct {
	Response
	Enabled bool `json:"enabled"`
}

// SummaryResponse is the reply to a request for adherence statistics.
type SummaryResponse struct {
	Response
	Stats *Summary       `json:"stats,omitempty"`
	Logs  []AdherenceLog `json:"logs,omitempty"`
}

// LogResponse is the reply to logging a dose.
type LogResponse struct {
	Response
	Log *AdherenceLog `json:"log,omitempty"`
}

// SettingsResponse is the reply to reading or updating a user's
// settings.
type SettingsResponse struct {
	Response
	Settings *Settings `json:"settings,omitempty"`
}

// SweepResponse is the reply to an overdue-check sweep.
type SweepResponse struct {
	Response
	NotificationsSent int       `json:"notificationsSent"`
	Timestamp         time.Time `json:"timestamp"`
}

// DeviceResponse is the reply to a device command, carrying the raw
// protocol line alongside whatever was parsed out of it.
type DeviceResponse struct {
	Response
	Raw     string        `json:"raw,omitempty"`
	Alarms  []Alarm       `json:"alarms,omitempty"`
	Device  *DeviceStatus `json:"status,omitempty"`
	Enabled *bool         `json:"enabled,omitempty"`
}

// DeviceStatus mirrors the status line the (simulated) pillbox device
// reports.
type DeviceStatus struct {
	Powered   bool `json:"powered"`
	Hour      int  `json:"hour"`
	Minute    int  `json:"minute"`
	DayOfWeek int  `json:"dayOfWeek"`
}

// CountResponse is the reply to operations that report a row count,
// like generating or clearing demo data.
type CountResponse struct {
	Response
	Count int64 `json:"count"`
}

// DebugResponse reports a few row counts for troubleshooting.
type DebugResponse struct {
	Response
	UserCount  int64 `json:"totalUsers"`
	AlarmCount int64 `json:"totalAlarms"`
}
