// /home/krylon/go/src/github.com/blicero/asclepius/objects/notification.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-21 19:40:55 krylon>

// Package objects provides the data types used by the application.
package objects

import (
	"time"

	"github.com/blicero/asclepius/common"
)

//go:generate ffjson notification.go

// MailMissedDose is the type tag of the notification sent for a
// missed dose. It is the only mail type we currently send.
const MailMissedDose = "missed_dose"

// EmailNotification records one attempt to notify a user by email.
// It serves as a dedup/audit ledger: the row is written regardless of
// whether the send succeeded, so a persistently failing transport does
// not cause an endless stream of attempts.
// Invariant: at most one EmailNotification per (user, alarm slot,
// calendar day of Scheduled, mail type).
type EmailNotification struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"-"`
	AlarmIndex int       `json:"alarmIndex"`
	Scheduled  time.Time `json:"scheduledTime"`
	MailType   string    `json:"emailType"`
	Success    bool      `json:"success"`
}

// Day returns the calendar day of the dose the notification concerns.
func (n *EmailNotification) Day() string {
	return common.DayKey(n.Scheduled)
} // func (n *EmailNotification) Day() string
