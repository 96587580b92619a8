// /home/krylon/go/src/github.com/blicero/asclepius/adherence/fakestore_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 09. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-23 19:02:31 krylon>

package adherence

import (
	"fmt"

	"github.com/blicero/asclepius/objects"
)

// fakeStore is an in-memory Store for testing the engine without a
// database.
type fakeStore struct {
	alarms map[string]*objects.Alarm
	logs   map[string]*objects.AdherenceLog
	notes  map[string]*objects.EmailNotification
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		alarms: make(map[string]*objects.Alarm),
		logs:   make(map[string]*objects.AdherenceLog),
		notes:  make(map[string]*objects.EmailNotification),
	}
} // func newFakeStore() *fakeStore

func (f *fakeStore) alarmKey(userID int64, idx int) string {
	return fmt.Sprintf("%d/%d", userID, idx)
}

func (f *fakeStore) addAlarm(a *objects.Alarm) {
	f.alarms[f.alarmKey(a.UserID, a.Index)] = a
}

func (f *fakeStore) AlarmGetByIndex(userID int64, idx int) (*objects.Alarm, error) {
	return f.alarms[f.alarmKey(userID, idx)], nil
}

func (f *fakeStore) LogAdd(l *objects.AdherenceLog) error {
	var key = fmt.Sprintf("%d/%d/%s", l.UserID, l.AlarmIndex, l.Day())

	if _, ok := f.logs[key]; ok {
		return &ConflictError{Msg: "Dose already logged for this time today"}
	}

	l.ID = int64(len(f.logs) + 1)
	f.logs[key] = l
	return nil
}

func (f *fakeStore) LogGetByDay(userID int64, idx int, day string) (*objects.AdherenceLog, error) {
	return f.logs[fmt.Sprintf("%d/%d/%s", userID, idx, day)], nil
}

func (f *fakeStore) NotificationAdd(n *objects.EmailNotification) error {
	var key = fmt.Sprintf("%d/%d/%s/%s", n.UserID, n.AlarmIndex, n.Day(), n.MailType)

	if _, ok := f.notes[key]; ok {
		return &ConflictError{Msg: "Notification already recorded"}
	}

	n.ID = int64(len(f.notes) + 1)
	f.notes[key] = n
	return nil
}

func (f *fakeStore) NotificationGetByDay(userID int64, idx int, day, mailType string) (*objects.EmailNotification, error) {
	return f.notes[fmt.Sprintf("%d/%d/%s/%s", userID, idx, day, mailType)], nil
}
