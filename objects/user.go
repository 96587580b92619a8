// /home/krylon/go/src/github.com/blicero/asclepius/objects/user.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-19 18:11:03 krylon>

package objects

import "time"

//go:generate ffjson user.go

// User is a person whose medication schedule we keep track of.
// ExtID is the opaque subject identifier handed to us by the identity
// provider; authentication itself happens elsewhere.
type User struct {
	ID            int64     `json:"-"`
	ExtID         string    `json:"-"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	NotifyEnabled bool      `json:"emailNotificationsEnabled"`
	NotifyDelay   int       `json:"notificationDelayMinutes"`
	Created       time.Time `json:"-"`
}

// Settings is the mutable subset of a User exposed via the settings
// operations.
type Settings struct {
	NotifyEnabled bool `json:"emailNotificationsEnabled"`
	NotifyDelay   int  `json:"notificationDelayMinutes"`
}

// Settings returns the User's notification preferences.
func (u *User) Settings() Settings {
	return Settings{
		NotifyEnabled: u.NotifyEnabled,
		NotifyDelay:   u.NotifyDelay,
	}
} // func (u *User) Settings() Settings
