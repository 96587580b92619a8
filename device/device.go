// /home/krylon/go/src/github.com/blicero/asclepius/device/device.go
// -*- mode: go; coding: utf-8; -*-
// Created on 15. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-27 18:55:40 krylon>

// Package device speaks the text protocol of the pillbox device. The
// real thing hangs off a serial port; this implementation answers the
// same commands from the database, so the rest of the application and
// the device endpoint behave identically with or without hardware
// attached.
//
// The protocol is line-based, fields separated by colons:
//
//	GET_ALARMS              -> ALARMS:h:m:e:h:m:e:h:m:e
//	SET_ALARM:idx:h:m       -> OK:idx:h:m
//	TOGGLE_ALARM:idx        -> OK:idx:0|1
//	GET_STATUS              -> STATUS:1:h:m:dow
//
// Anything else, including structurally valid commands with out of
// range arguments, yields ERROR:UNKNOWN_COMMAND.
package device

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/database"
	"github.com/blicero/asclepius/logdomain"
	"github.com/blicero/asclepius/objects"
)

// ErrResponse is the Device's answer to anything it does not
// understand.
const ErrResponse = "ERROR:UNKNOWN_COMMAND"

// Device is the application's end of the pillbox link.
type Device struct {
	log  *log.Logger
	pool *database.Pool
}

// New creates a Device using the given connection Pool.
func New(pool *database.Pool) (*Device, error) {
	var (
		err error
		dev = &Device{pool: pool}
	)

	if dev.log, err = common.GetLogger(logdomain.Device); err != nil {
		return nil, err
	}

	return dev, nil
} // func New(pool *database.Pool) (*Device, error)

// SendCommand sends one command on behalf of the given User and
// returns the device's response line.
func (dev *Device) SendCommand(userID int64, cmd string) (string, error) {
	dev.log.Printf("[TRACE] User %d -> device: %s\n",
		userID,
		cmd)

	var (
		err  error
		resp string
		db   = dev.pool.Get()
	)

	defer dev.pool.Put(db)

	switch {
	case cmd == "GET_ALARMS":
		resp, err = dev.getAlarms(db, userID)
	case strings.HasPrefix(cmd, "SET_ALARM:"):
		resp, err = dev.setAlarm(db, userID, cmd)
	case strings.HasPrefix(cmd, "TOGGLE_ALARM:"):
		resp, err = dev.toggleAlarm(db, userID, cmd)
	case cmd == "GET_STATUS":
		var now = time.Now()
		resp = fmt.Sprintf("STATUS:1:%d:%d:%d",
			now.Hour(),
			now.Minute(),
			int(now.Weekday()))
	default:
		resp = ErrResponse
	}

	if err != nil {
		dev.log.Printf("[ERROR] Command %q failed: %s\n",
			cmd,
			err.Error())
		return "", err
	}

	dev.log.Printf("[TRACE] Device -> user %d: %s\n",
		userID,
		resp)
	return resp, nil
} // func (dev *Device) SendCommand(userID int64, cmd string) (string, error)

func (dev *Device) getAlarms(db *database.Database, userID int64) (string, error) {
	var (
		err    error
		alarms []objects.Alarm
	)

	if alarms, err = db.AlarmGetByUser(userID); err != nil {
		return "", err
	} else if len(alarms) == 0 {
		// A User we have not seen before gets the stock schedule.
		if alarms, err = db.AlarmInstallDefaults(userID); err != nil {
			return "", err
		}
	}

	var fields = make([]string, 1, 1+len(alarms)*3)
	fields[0] = "ALARMS"

	for _, a := range alarms {
		var enabled = "0"
		if a.Enabled {
			enabled = "1"
		}

		fields = append(fields,
			strconv.Itoa(a.Hour),
			strconv.Itoa(a.Minute),
			enabled)
	}

	return strings.Join(fields, ":"), nil
} // func (dev *Device) getAlarms(db *database.Database, userID int64) (string, error)

func (dev *Device) setAlarm(db *database.Database, userID int64, cmd string) (string, error) {
	var (
		err               error
		idx, hour, minute int
		parts             = strings.Split(cmd, ":")
	)

	if len(parts) != 4 {
		return ErrResponse, nil
	} else if idx, err = strconv.Atoi(parts[1]); err != nil {
		return ErrResponse, nil
	} else if hour, err = strconv.Atoi(parts[2]); err != nil {
		return ErrResponse, nil
	} else if minute, err = strconv.Atoi(parts[3]); err != nil {
		return ErrResponse, nil
	}

	if idx < 0 || idx >= objects.SlotCount || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return ErrResponse, nil
	}

	if err = db.AlarmSetTime(userID, idx, hour, minute); err != nil {
		return "", err
	}

	return fmt.Sprintf("OK:%d:%d:%d", idx, hour, minute), nil
} // func (dev *Device) setAlarm(db *database.Database, userID int64, cmd string) (string, error)

func (dev *Device) toggleAlarm(db *database.Database, userID int64, cmd string) (string, error) {
	var (
		err   error
		idx   int
		a     *objects.Alarm
		parts = strings.Split(cmd, ":")
	)

	if len(parts) != 2 {
		return ErrResponse, nil
	} else if idx, err = strconv.Atoi(parts[1]); err != nil {
		return ErrResponse, nil
	} else if idx < 0 || idx >= objects.SlotCount {
		return ErrResponse, nil
	}

	if a, err = db.AlarmGetByIndex(userID, idx); err != nil {
		return "", err
	} else if a == nil {
		return ErrResponse, nil
	} else if err = db.AlarmSetEnabled(userID, idx, !a.Enabled); err != nil {
		return "", err
	}

	var enabled = "0"
	if !a.Enabled {
		enabled = "1"
	}

	return fmt.Sprintf("OK:%d:%s", idx, enabled), nil
} // func (dev *Device) toggleAlarm(db *database.Database, userID int64, cmd string) (string, error)

// ParseAlarms decodes the device's answer to GET_ALARMS.
func ParseAlarms(resp string) ([]objects.Alarm, error) {
	if !strings.HasPrefix(resp, "ALARMS:") {
		return nil, fmt.Errorf("Not an ALARMS response: %q", resp)
	}

	var fields = strings.Split(strings.TrimPrefix(resp, "ALARMS:"), ":")

	if len(fields)%3 != 0 {
		return nil, fmt.Errorf("Malformed ALARMS response: %q", resp)
	}

	var alarms = make([]objects.Alarm, 0, len(fields)/3)

	for i := 0; i < len(fields); i += 3 {
		var (
			err error
			a   = objects.Alarm{Index: i / 3}
		)

		if a.Hour, err = strconv.Atoi(fields[i]); err != nil {
			return nil, fmt.Errorf("Malformed ALARMS response: %q", resp)
		} else if a.Minute, err = strconv.Atoi(fields[i+1]); err != nil {
			return nil, fmt.Errorf("Malformed ALARMS response: %q", resp)
		}

		a.Enabled = fields[i+2] == "1"
		alarms = append(alarms, a)
	}

	return alarms, nil
} // func ParseAlarms(resp string) ([]objects.Alarm, error)

// ParseStatus decodes the device's answer to GET_STATUS.
func ParseStatus(resp string) (*objects.DeviceStatus, error) {
	if !strings.HasPrefix(resp, "STATUS:") {
		return nil, fmt.Errorf("Not a STATUS response: %q", resp)
	}

	var (
		err    error
		status objects.DeviceStatus
		fields = strings.Split(strings.TrimPrefix(resp, "STATUS:"), ":")
	)

	if len(fields) != 4 {
		return nil, fmt.Errorf("Malformed STATUS response: %q", resp)
	}

	status.Powered = fields[0] == "1"

	if status.Hour, err = strconv.Atoi(fields[1]); err != nil {
		return nil, fmt.Errorf("Malformed STATUS response: %q", resp)
	} else if status.Minute, err = strconv.Atoi(fields[2]); err != nil {
		return nil, fmt.Errorf("Malformed STATUS response: %q", resp)
	} else if status.DayOfWeek, err = strconv.Atoi(fields[3]); err != nil {
		return nil, fmt.Errorf("Malformed STATUS response: %q", resp)
	}

	return &status, nil
} // func ParseStatus(resp string) (*objects.DeviceStatus, error)
