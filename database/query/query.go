// /home/krylon/go/src/github.com/blicero/asclepius/database/query/query.go
// -*- mode: go; coding: utf-8; -*-
// Created on 11. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-23 20:04:31 krylon>

// Package query provides symbolic constants for identifying SQL queries.
package query

//go:generate stringer -type=ID

type ID uint8

const (
	UserAdd ID = iota
	UserGetByID
	UserGetByExtID
	UserGetNotifiable
	UserSetSettings
	UserCount
	AlarmAdd
	AlarmGetByUser
	AlarmGetByIndex
	AlarmSetTime
	AlarmSetEnabled
	AlarmCount
	LogAdd
	LogGetByUser
	LogGetByDay
	LogDeleteByUser
	NotificationAdd
	NotificationGetByDay
)
