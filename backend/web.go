// /home/krylon/go/src/github.com/blicero/asclepius/backend/web.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-30 22:17:36 krylon>

package backend

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/blicero/asclepius/adherence"
	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/database"
	"github.com/blicero/asclepius/device"
	"github.com/blicero/asclepius/objects"
	"github.com/blicero/asclepius/objects/dosestatus"
	"github.com/gorilla/mux"
	"github.com/pquerna/ffjson/ffjson"
)

const (
	defaultStatsDays = 30
	defaultDemoDays  = 14
	maxDays          = 365
)

func (d *Daemon) initWebHandlers() error {
	d.router.HandleFunc("/notify/check", d.handleNotifyCheck).Methods("GET")
	d.router.HandleFunc("/debug", d.handleDebug).Methods("GET")

	var api = d.router.NewRoute().Subrouter()
	api.Use(d.authenticate)

	api.HandleFunc("/user", d.handleUserAdd).Methods("POST")
	api.HandleFunc("/alarm/all", d.handleAlarmGetAll).Methods("GET")
	api.HandleFunc("/alarm/set", d.handleAlarmSet).Methods("POST")
	api.HandleFunc("/alarm/{index:(?:\\d+)}/toggle", d.handleAlarmToggle).Methods("POST")
	api.HandleFunc("/adherence", d.handleAdherenceGet).Methods("GET")
	api.HandleFunc("/adherence/log", d.handleAdherenceLog).Methods("POST")
	api.HandleFunc("/notify/test", d.handleNotifyTest).Methods("GET")
	api.HandleFunc("/settings", d.handleSettingsGet).Methods("GET")
	api.HandleFunc("/settings", d.handleSettingsSet).Methods("POST")
	api.HandleFunc("/device", d.handleDeviceGet).Methods("GET")
	api.HandleFunc("/device", d.handleDevicePost).Methods("POST")
	api.HandleFunc("/demo", d.handleDemoAdd).Methods("POST")
	api.HandleFunc("/demo", d.handleDemoClear).Methods("DELETE")

	return nil
} // func (d *Daemon) initWebHandlers() error

func (d *Daemon) serveHTTP() {
	var err error

	defer d.log.Println("[INFO] Web server is shutting down")

	d.log.Printf("[INFO] Web interface is going online at %s\n", d.web.Addr)

	if err = d.web.ListenAndServe(); err != nil {
		if err != http.ErrServerClosed {
			d.log.Printf("[ERROR] ListenAndServe returned an error: %s\n",
				err.Error())
		} else {
			d.log.Println("[INFO] HTTP Server has shut down.")
		}
	}
} // func (d *Daemon) serveHTTP()

func (d *Daemon) handleUserAdd(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err  error
		msg  string
		body []byte
		u    *objects.User
		db   *database.Database
		code = http.StatusOK
		req  struct {
			Email string `json:"email" validate:"required,email"`
			Name  string `json:"name"`
		}
		res = objects.SettingsResponse{Response: objects.Response{ID: d.getID()}}
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = db.UserGetByExtID(d.subject(r)); err != nil {
		msg = fmt.Sprintf("Cannot look up User: %s", err.Error())
		code = http.StatusInternalServerError
		goto SEND_RESPONSE
	} else if u != nil {
		// Registration is idempotent.
		var s = u.Settings()
		res.Status = true
		res.Message = "Already registered"
		res.Settings = &s
		goto SEND_RESPONSE
	}

	if body, err = io.ReadAll(r.Body); err != nil {
		msg = fmt.Sprintf("Cannot read request body: %s", err.Error())
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	} else if err = ffjson.Unmarshal(body, &req); err != nil {
		msg = fmt.Sprintf("Cannot parse request body: %s", err.Error())
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	} else if err = d.validate.Struct(&req); err != nil {
		msg = fmt.Sprintf("Invalid registration request: %s", err.Error())
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	}

	u = &objects.User{
		ExtID:       d.subject(r),
		Email:       req.Email,
		Name:        req.Name,
		NotifyDelay: 15,
	}

	if err = db.UserAdd(u); err != nil {
		msg = fmt.Sprintf("Cannot add User %s: %s",
			req.Email,
			err.Error())
		code = errStatus(err)
		goto SEND_RESPONSE
	}

	{
		var s = u.Settings()
		res.Status = true
		res.Message = fmt.Sprintf("User %s registered", u.Email)
		res.Settings = &s
	}

SEND_RESPONSE:
	if msg != "" {
		d.log.Printf("[ERROR] %s\n", msg)
		res.Error = msg
	}
	d.sendResponseJSON(w, code, &res)
} // func (d *Daemon) handleUserAdd(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleAlarmGetAll(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err    error
		msg    string
		u      *objects.User
		db     *database.Database
		alarms []objects.Alarm
		code   = http.StatusOK
		res    = objects.AlarmListResponse{Response: objects.Response{ID: d.getID()}}
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.currentUser(r, db); err != nil {
		msg = err.Error()
		code = errStatus(err)
		goto SEND_RESPONSE
	} else if alarms, err = db.AlarmGetByUser(u.ID); err != nil {
		msg = fmt.Sprintf("Cannot get Alarms of User %s: %s",
			u.Email,
			err.Error())
		code = http.StatusInternalServerError
		goto SEND_RESPONSE
	} else if len(alarms) == 0 {
		if alarms, err = db.AlarmInstallDefaults(u.ID); err != nil {
			msg = fmt.Sprintf("Cannot install default Alarms for User %s: %s",
				u.Email,
				err.Error())
			code = http.StatusInternalServerError
			goto SEND_RESPONSE
		}
	}

	res.Status = true
	res.Alarms = alarms

SEND_RESPONSE:
	if msg != "" {
		d.log.Printf("[ERROR] %s\n", msg)
		res.Error = msg
	}
	d.sendResponseJSON(w, code, &res)
} // func (d *Daemon) handleAlarmGetAll(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleAlarmSet(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err  error
		msg  string
		body []byte
		u    *objects.User
		db   *database.Database
		code = http.StatusOK
		req  struct {
			Index  *int `json:"index" validate:"required"`
			Hour   *int `json:"hour" validate:"required"`
			Minute *int `json:"minute" validate:"required"`
		}
		res = objects.Response{ID: d.getID()}
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.currentUser(r, db); err != nil {
		msg = err.Error()
		code = errStatus(err)
		goto SEND_RESPONSE
	} else if body, err = io.ReadAll(r.Body); err != nil {
		msg = fmt.Sprintf("Cannot read request body: %s", err.Error())
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	} else if err = ffjson.Unmarshal(body, &req); err != nil {
		msg = fmt.Sprintf("Cannot parse request body: %s", err.Error())
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	} else if err = d.validate.Struct(&req); err != nil {
		msg = "Missing or invalid parameters: index, hour, minute"
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	}

	switch {
	case *req.Index < 0 || *req.Index >= objects.SlotCount:
		msg = "Index must be 0, 1, or 2"
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	case *req.Hour < 0 || *req.Hour > 23:
		msg = "Hour must be 0-23"
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	case *req.Minute < 0 || *req.Minute > 59:
		msg = "Minute must be 0-59"
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	}

	if err = db.AlarmSetTime(u.ID, *req.Index, *req.Hour, *req.Minute); err != nil {
		msg = fmt.Sprintf("Cannot set Alarm %d of User %s: %s",
			*req.Index,
			u.Email,
			err.Error())
		code = http.StatusInternalServerError
		goto SEND_RESPONSE
	}

	res.Status = true
	res.Message = fmt.Sprintf("Alarm %d set to %02d:%02d",
		*req.Index,
		*req.Hour,
		*req.Minute)

SEND_RESPONSE:
	if msg != "" {
		d.log.Printf("[ERROR] %s\n", msg)
		res.Error = msg
	}
	d.sendResponseJSON(w, code, &res)
} // func (d *Daemon) handleAlarmSet(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleAlarmToggle(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err  error
		msg  string
		idx  int64
		u    *objects.User
		a    *objects.Alarm
		db   *database.Database
		vars map[string]string
		code = http.StatusOK
		res  = objects.ToggleResponse{Response: objects.Response{ID: d.getID()}}
	)

	vars = mux.Vars(r)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if idx, err = strconv.ParseInt(vars["index"], 10, 8); err != nil {
		msg = fmt.Sprintf("Cannot parse alarm index %q: %s",
			vars["index"],
			err.Error())
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	} else if idx < 0 || idx >= objects.SlotCount {
		msg = "Index must be 0, 1, or 2"
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	} else if u, err = d.currentUser(r, db); err != nil {
		msg = err.Error()
		code = errStatus(err)
		goto SEND_RESPONSE
	} else if a, err = db.AlarmGetByIndex(u.ID, int(idx)); err != nil {
		msg = fmt.Sprintf("Cannot look up Alarm %d of User %s: %s",
			idx,
			u.Email,
			err.Error())
		code = http.StatusInternalServerError
		goto SEND_RESPONSE
	} else if a == nil {
		msg = fmt.Sprintf("User %s has no Alarm at slot %d",
			u.Email,
			idx)
		code = http.StatusNotFound
		goto SEND_RESPONSE
	} else if err = db.AlarmSetEnabled(u.ID, a.Index, !a.Enabled); err != nil {
		msg = fmt.Sprintf("Cannot toggle Alarm %d of User %s: %s",
			idx,
			u.Email,
			err.Error())
		code = http.StatusInternalServerError
		goto SEND_RESPONSE
	}

	res.Status = true
	res.Enabled = !a.Enabled
	if res.Enabled {
		res.Message = fmt.Sprintf("Alarm %d is now enabled", a.Index)
	} else {
		res.Message = fmt.Sprintf("Alarm %d is now disabled", a.Index)
	}

SEND_RESPONSE:
	if msg != "" {
		d.log.Printf("[ERROR] %s\n", msg)
		res.Error = msg
	}
	d.sendResponseJSON(w, code, &res)
} // func (d *Daemon) handleAlarmToggle(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleAdherenceGet(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err  error
		msg  string
		days = defaultStatsDays
		u    *objects.User
		db   *database.Database
		logs []objects.AdherenceLog
		now  = time.Now()
		code = http.StatusOK
		res  = objects.SummaryResponse{Response: objects.Response{ID: d.getID()}}
	)

	if v := r.URL.Query().Get("days"); v != "" {
		if days, err = strconv.Atoi(v); err != nil || days < 1 || days > maxDays {
			msg = fmt.Sprintf("Invalid number of days: %q", v)
			code = http.StatusBadRequest
			goto SEND_RESPONSE
		}
	}

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.currentUser(r, db); err != nil {
		msg = err.Error()
		code = errStatus(err)
		goto SEND_RESPONSE
	} else if logs, err = db.LogGetByUser(u.ID, common.DayStart(now.AddDate(0, 0, -days))); err != nil {
		msg = fmt.Sprintf("Cannot get AdherenceLogs of User %s: %s",
			u.Email,
			err.Error())
		code = http.StatusInternalServerError
		goto SEND_RESPONSE
	}

	res.Status = true
	res.Stats = adherence.Summarize(logs, now)
	res.Logs = logs

SEND_RESPONSE:
	if msg != "" {
		d.log.Printf("[ERROR] %s\n", msg)
		res.Error = msg
	}
	d.sendResponseJSON(w, code, &res)
} // func (d *Daemon) handleAdherenceGet(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleAdherenceLog(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err  error
		msg  string
		body []byte
		u    *objects.User
		db   *database.Database
		l    *objects.AdherenceLog
		req  adherence.DoseRequest
		code = http.StatusOK
		res  = objects.LogResponse{Response: objects.Response{ID: d.getID()}}
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.currentUser(r, db); err != nil {
		msg = err.Error()
		code = errStatus(err)
		goto SEND_RESPONSE
	} else if body, err = io.ReadAll(r.Body); err != nil {
		msg = fmt.Sprintf("Cannot read request body: %s", err.Error())
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	} else if err = ffjson.Unmarshal(body, &req); err != nil {
		msg = fmt.Sprintf("Cannot parse request body: %s", err.Error())
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	} else if err = d.validate.Struct(&req); err != nil {
		msg = fmt.Sprintf("Invalid dose request: %s", err.Error())
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	} else if l, err = adherence.LogDose(db, u, &req, time.Now()); err != nil {
		msg = err.Error()
		code = errStatus(err)
		goto SEND_RESPONSE
	}

	res.Status = true
	res.Message = "Dose logged"
	res.Log = l

SEND_RESPONSE:
	if msg != "" {
		d.log.Printf("[ERROR] %s\n", msg)
		res.Error = msg
	}
	d.sendResponseJSON(w, code, &res)
} // func (d *Daemon) handleAdherenceLog(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleNotifyCheck(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err  error
		msg  string
		sent int
		now  = time.Now()
		code = http.StatusOK
		res  = objects.SweepResponse{
			Response:  objects.Response{ID: d.getID()},
			Timestamp: now,
		}
	)

	if sent, err = d.sweepOnce(now); err != nil {
		msg = fmt.Sprintf("Overdue sweep failed: %s", err.Error())
		code = http.StatusInternalServerError
		goto SEND_RESPONSE
	}

	res.Status = true
	res.NotificationsSent = sent
	res.Message = fmt.Sprintf("Sent %d notification(s)", sent)

SEND_RESPONSE:
	if msg != "" {
		d.log.Printf("[ERROR] %s\n", msg)
		res.Error = msg
	}
	d.sendResponseJSON(w, code, &res)
} // func (d *Daemon) handleNotifyCheck(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleNotifyTest(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	const testBody = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #0BA6DF;">Test Notification</h2>
  <p>If you are reading this, email notifications are working.</p>
</div>
`

	var (
		err  error
		msg  string
		u    *objects.User
		db   *database.Database
		code = http.StatusOK
		res  = objects.Response{ID: d.getID()}
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.currentUser(r, db); err != nil {
		msg = err.Error()
		code = errStatus(err)
		goto SEND_RESPONSE
	} else if err = d.mail.Send(u.Email, "Medication Reminder - Test", testBody); err != nil {
		msg = fmt.Sprintf("Cannot send test email to %s: %s",
			u.Email,
			err.Error())
		code = http.StatusInternalServerError
		goto SEND_RESPONSE
	}

	res.Status = true
	res.Message = fmt.Sprintf("Test email sent to %s", u.Email)

SEND_RESPONSE:
	if msg != "" {
		d.log.Printf("[ERROR] %s\n", msg)
		res.Error = msg
	}
	d.sendResponseJSON(w, code, &res)
} // func (d *Daemon) handleNotifyTest(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err  error
		msg  string
		u    *objects.User
		db   *database.Database
		code = http.StatusOK
		res  = objects.SettingsResponse{Response: objects.Response{ID: d.getID()}}
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.currentUser(r, db); err != nil {
		msg = err.Error()
		code = errStatus(err)
		goto SEND_RESPONSE
	}

	{
		var s = u.Settings()
		res.Status = true
		res.Settings = &s
	}

SEND_RESPONSE:
	if msg != "" {
		d.log.Printf("[ERROR] %s\n", msg)
		res.Error = msg
	}
	d.sendResponseJSON(w, code, &res)
} // func (d *Daemon) handleSettingsGet(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleSettingsSet(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err  error
		msg  string
		body []byte
		u    *objects.User
		db   *database.Database
		code = http.StatusOK
		req  struct {
			NotifyEnabled *bool `json:"emailNotificationsEnabled" validate:"required"`
			NotifyDelay   *int  `json:"notificationDelayMinutes" validate:"required"`
		}
		res = objects.SettingsResponse{Response: objects.Response{ID: d.getID()}}
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.currentUser(r, db); err != nil {
		msg = err.Error()
		code = errStatus(err)
		goto SEND_RESPONSE
	} else if body, err = io.ReadAll(r.Body); err != nil {
		msg = fmt.Sprintf("Cannot read request body: %s", err.Error())
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	} else if err = ffjson.Unmarshal(body, &req); err != nil {
		msg = fmt.Sprintf("Cannot parse request body: %s", err.Error())
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	} else if err = d.validate.Struct(&req); err != nil {
		msg = "Missing or invalid parameters: emailNotificationsEnabled, notificationDelayMinutes"
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	} else if err = db.UserSetSettings(u, objects.Settings{NotifyEnabled: *req.NotifyEnabled, NotifyDelay: *req.NotifyDelay}); err != nil {
		msg = err.Error()
		code = errStatus(err)
		goto SEND_RESPONSE
	}

	{
		var s = u.Settings()
		res.Status = true
		res.Message = "Settings saved"
		res.Settings = &s
	}

SEND_RESPONSE:
	if msg != "" {
		d.log.Printf("[ERROR] %s\n", msg)
		res.Error = msg
	}
	d.sendResponseJSON(w, code, &res)
} // func (d *Daemon) handleSettingsSet(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleDeviceGet(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err    error
		msg    string
		raw    string
		u      *objects.User
		db     *database.Database
		action = r.URL.Query().Get("action")
		code   = http.StatusOK
		res    = objects.DeviceResponse{Response: objects.Response{ID: d.getID()}}
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.currentUser(r, db); err != nil {
		msg = err.Error()
		code = errStatus(err)
		goto SEND_RESPONSE
	}

	switch action {
	case "get_alarms":
		if raw, err = d.dev.SendCommand(u.ID, "GET_ALARMS"); err != nil {
			msg = fmt.Sprintf("Device command failed: %s", err.Error())
			code = http.StatusInternalServerError
			goto SEND_RESPONSE
		} else if res.Alarms, err = device.ParseAlarms(raw); err != nil {
			msg = err.Error()
			code = http.StatusInternalServerError
			goto SEND_RESPONSE
		}
	case "get_status":
		if raw, err = d.dev.SendCommand(u.ID, "GET_STATUS"); err != nil {
			msg = fmt.Sprintf("Device command failed: %s", err.Error())
			code = http.StatusInternalServerError
			goto SEND_RESPONSE
		} else if res.Device, err = device.ParseStatus(raw); err != nil {
			msg = err.Error()
			code = http.StatusInternalServerError
			goto SEND_RESPONSE
		}
	default:
		msg = "Invalid action. Use ?action=get_alarms or ?action=get_status"
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	}

	res.Status = true
	res.Raw = raw

SEND_RESPONSE:
	if msg != "" {
		d.log.Printf("[ERROR] %s\n", msg)
		res.Error = msg
	}
	d.sendResponseJSON(w, code, &res)
} // func (d *Daemon) handleDeviceGet(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleDevicePost(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err      error
		msg      string
		raw, cmd string
		body     []byte
		u        *objects.User
		db       *database.Database
		code     = http.StatusOK
		req      struct {
			Action string `json:"action" validate:"required"`
			Index  *int   `json:"index"`
			Hour   *int   `json:"hour"`
			Minute *int   `json:"minute"`
		}
		res = objects.DeviceResponse{Response: objects.Response{ID: d.getID()}}
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.currentUser(r, db); err != nil {
		msg = err.Error()
		code = errStatus(err)
		goto SEND_RESPONSE
	} else if body, err = io.ReadAll(r.Body); err != nil {
		msg = fmt.Sprintf("Cannot read request body: %s", err.Error())
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	} else if err = ffjson.Unmarshal(body, &req); err != nil {
		msg = fmt.Sprintf("Cannot parse request body: %s", err.Error())
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	} else if err = d.validate.Struct(&req); err != nil {
		msg = "Missing parameter: action"
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	}

	switch req.Action {
	case "set_alarm":
		if req.Index == nil || req.Hour == nil || req.Minute == nil {
			msg = "Missing or invalid parameters: index, hour, minute"
			code = http.StatusBadRequest
			goto SEND_RESPONSE
		}
		cmd = fmt.Sprintf("SET_ALARM:%d:%d:%d", *req.Index, *req.Hour, *req.Minute)
	case "toggle_alarm":
		if req.Index == nil {
			msg = "Missing or invalid parameter: index"
			code = http.StatusBadRequest
			goto SEND_RESPONSE
		}
		cmd = fmt.Sprintf("TOGGLE_ALARM:%d", *req.Index)
	default:
		msg = `Invalid action. Use "set_alarm" or "toggle_alarm"`
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	}

	if raw, err = d.dev.SendCommand(u.ID, cmd); err != nil {
		msg = fmt.Sprintf("Device command failed: %s", err.Error())
		code = http.StatusInternalServerError
		goto SEND_RESPONSE
	} else if raw == device.ErrResponse {
		msg = fmt.Sprintf("Unexpected response: %s", raw)
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	}

	if req.Action == "toggle_alarm" {
		var enabled = raw[len(raw)-1] == '1'
		res.Enabled = &enabled
	}

	res.Status = true
	res.Raw = raw

SEND_RESPONSE:
	if msg != "" {
		d.log.Printf("[ERROR] %s\n", msg)
		res.Error = msg
	}
	d.sendResponseJSON(w, code, &res)
} // func (d *Daemon) handleDevicePost(w http.ResponseWriter, r *http.Request)

// demoSlots describes how plausible the generated adherence data
// looks per slot: people are most reliable in the morning.
var demoSlots = [objects.SlotCount]struct {
	hour     int
	missRate float64
	lateRate float64
	maxDelay int64
}{
	{8, 0.05, 0.2, 15},
	{13, 0.1, 0.3, 20},
	{20, 0.15, 0.4, 25},
}

func (d *Daemon) handleDemoAdd(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err  error
		msg  string
		body []byte
		cnt  int64
		u    *objects.User
		db   *database.Database
		now  = time.Now()
		code = http.StatusOK
		req  struct {
			Days int `json:"days"`
		}
		res = objects.CountResponse{Response: objects.Response{ID: d.getID()}}
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.currentUser(r, db); err != nil {
		msg = err.Error()
		code = errStatus(err)
		goto SEND_RESPONSE
	} else if body, err = io.ReadAll(r.Body); err != nil {
		msg = fmt.Sprintf("Cannot read request body: %s", err.Error())
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	}

	if len(body) > 0 {
		if err = ffjson.Unmarshal(body, &req); err != nil {
			msg = fmt.Sprintf("Cannot parse request body: %s", err.Error())
			code = http.StatusBadRequest
			goto SEND_RESPONSE
		}
	}

	if req.Days == 0 {
		req.Days = defaultDemoDays
	} else if req.Days < 1 || req.Days > maxDays {
		msg = fmt.Sprintf("Invalid number of days: %d", req.Days)
		code = http.StatusBadRequest
		goto SEND_RESPONSE
	}

	for i := 0; i < req.Days; i++ {
		var day = now.AddDate(0, 0, -i)

		for idx, slot := range demoSlots {
			var l = objects.AdherenceLog{
				UserID:     u.ID,
				AlarmIndex: idx,
				Scheduled:  time.Date(day.Year(), day.Month(), day.Day(), slot.hour, 0, 0, 0, time.Local),
				Status:     dosestatus.TakenOnTime,
			}

			switch {
			case rand.Float64() < slot.missRate: // nolint: gosec
				l.Status = dosestatus.Missed
			case rand.Float64() < slot.lateRate: // nolint: gosec
				var delay = rand.Int63n(slot.maxDelay) + 1 // nolint: gosec
				var taken = l.Scheduled.Add(time.Duration(delay) * time.Minute)
				l.Status = dosestatus.TakenLate
				l.Delay = &delay
				l.TakenAt = &taken
			default:
				var taken = l.Scheduled
				l.TakenAt = &taken
			}

			if err = db.LogAdd(&l); err != nil {
				var cerr *adherence.ConflictError
				if errors.As(err, &cerr) {
					// The day already has real data, leave it alone.
					continue
				}

				msg = fmt.Sprintf("Cannot add demo log: %s", err.Error())
				code = http.StatusInternalServerError
				goto SEND_RESPONSE
			}

			cnt++
		}
	}

	res.Status = true
	res.Count = cnt
	res.Message = fmt.Sprintf("Created %d demo adherence logs for the last %d days",
		cnt,
		req.Days)

SEND_RESPONSE:
	if msg != "" {
		d.log.Printf("[ERROR] %s\n", msg)
		res.Error = msg
	}
	d.sendResponseJSON(w, code, &res)
} // func (d *Daemon) handleDemoAdd(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleDemoClear(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err  error
		msg  string
		cnt  int64
		u    *objects.User
		db   *database.Database
		code = http.StatusOK
		res  = objects.CountResponse{Response: objects.Response{ID: d.getID()}}
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.currentUser(r, db); err != nil {
		msg = err.Error()
		code = errStatus(err)
		goto SEND_RESPONSE
	} else if cnt, err = db.LogDeleteByUser(u.ID); err != nil {
		msg = fmt.Sprintf("Cannot delete AdherenceLogs of User %s: %s",
			u.Email,
			err.Error())
		code = http.StatusInternalServerError
		goto SEND_RESPONSE
	}

	res.Status = true
	res.Count = cnt
	res.Message = fmt.Sprintf("Deleted %d adherence logs", cnt)

SEND_RESPONSE:
	if msg != "" {
		d.log.Printf("[ERROR] %s\n", msg)
		res.Error = msg
	}
	d.sendResponseJSON(w, code, &res)
} // func (d *Daemon) handleDemoClear(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleDebug(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err  error
		msg  string
		db   *database.Database
		code = http.StatusOK
		res  = objects.DebugResponse{Response: objects.Response{ID: d.getID()}}
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if res.UserCount, err = db.UserCount(); err != nil {
		msg = fmt.Sprintf("Cannot count Users: %s", err.Error())
		code = http.StatusInternalServerError
		goto SEND_RESPONSE
	} else if res.AlarmCount, err = db.AlarmCount(); err != nil {
		msg = fmt.Sprintf("Cannot count Alarms: %s", err.Error())
		code = http.StatusInternalServerError
		goto SEND_RESPONSE
	}

	res.Status = true

SEND_RESPONSE:
	if msg != "" {
		d.log.Printf("[ERROR] %s\n", msg)
		res.Error = msg
	}
	d.sendResponseJSON(w, code, &res)
} // func (d *Daemon) handleDebug(w http.ResponseWriter, r *http.Request)

//////////////////////////////////////////////////////////////////////////////////////////////////
/// Helpers //////////////////////////////////////////////////////////////////////////////////////
//////////////////////////////////////////////////////////////////////////////////////////////////

// errStatus maps the engine's error types to HTTP status codes.
func errStatus(err error) int {
	var (
		verr *adherence.ValidationError
		nerr *adherence.NotFoundError
		cerr *adherence.ConflictError
	)

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &nerr):
		return http.StatusNotFound
	case errors.As(err, &cerr):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
} // func errStatus(err error) int

func (d *Daemon) sendResponseJSON(w http.ResponseWriter, code int, res interface{}) {
	var (
		err error
		buf []byte
	)

	if buf, err = ffjson.Marshal(res); err != nil {
		d.log.Printf("[ERROR] Cannot serialize Response object %#v: %s\n",
			res,
			err.Error())
		return
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) sendResponseJSON(w http.ResponseWriter, code int, res interface{})
