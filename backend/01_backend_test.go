// /home/krylon/go/src/github.com/blicero/asclepius/backend/01_backend_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 21. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-30 23:05:14 krylon>

package backend

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/blicero/asclepius/config"
	"github.com/blicero/asclepius/objects"
	"github.com/golang-jwt/jwt"
	"github.com/pquerna/ffjson/ffjson"
)

const testSecret = "wer das liest ist doof"

var (
	back    *Daemon
	rec     mailRecorder
	subject = "auth0|многоденег"
)

// mailRecorder stands in for the Resend client.
type mailRecorder struct {
	sent []string
}

func (m *mailRecorder) Send(to, subject, html string) error {
	m.sent = append(m.sent, subject)
	return nil
} // func (m *mailRecorder) Send(to, subject, html string) error

func (m *mailRecorder) SendMissedDose(u *objects.User, a *objects.Alarm, elapsed int) error {
	m.sent = append(m.sent, fmt.Sprintf("missed:%d:%d", a.Index, elapsed))
	return nil
} // func (m *mailRecorder) SendMissedDose(u *objects.User, a *objects.Alarm, elapsed int) error

func mkToken(sub string) string {
	var token = jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	var s, err = token.SignedString([]byte(testSecret))
	if err != nil {
		panic(err)
	}

	return s
} // func mkToken(sub string) string

// request runs one request through the Daemon's handler chain and
// decodes the JSON reply into res.
func request(t *testing.T, method, path, token, body string, res interface{}) int {
	t.Helper()

	var rdr *strings.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	} else {
		rdr = strings.NewReader("")
	}

	var req = httptest.NewRequest(method, path, rdr)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	var w = httptest.NewRecorder()
	back.web.Handler.ServeHTTP(w, req)

	if res != nil {
		var err = ffjson.Unmarshal(w.Body.Bytes(), res)
		if err != nil {
			t.Fatalf("Cannot parse response to %s %s: %s\n%s",
				method,
				path,
				err.Error(),
				w.Body.String())
		}
	}

	return w.Code
} // func request(t *testing.T, method, path, token, body string, res interface{}) int

func TestSummon(t *testing.T) {
	var (
		err error
		cfg = &config.Config{
			Addr:          "[::1]:0",
			AuthSecret:    testSecret,
			SweepInterval: time.Hour,
			RateLimit:     100,
			PoolSize:      2,
		}
	)

	if back, err = Summon(cfg); err != nil {
		back = nil
		t.Fatalf("Cannot create Daemon: %s",
			err.Error())
	}

	back.mail = &rec
} // func TestSummon(t *testing.T)

func TestAuthRequired(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var res objects.Response

	if code := request(t, "GET", "/alarm/all", "", "", &res); code != 401 {
		t.Errorf("Request without token got status %d (expected 401)",
			code)
	}

	if code := request(t, "GET", "/alarm/all", "certainly.not.ajwt", "", &res); code != 401 {
		t.Errorf("Request with a garbage token got status %d (expected 401)",
			code)
	}
} // func TestAuthRequired(t *testing.T)

func TestRegister(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var (
		token = mkToken(subject)
		body  = `{"email": "backend.test@example.com", "name": "Test Person"}`
		res   objects.SettingsResponse
	)

	if code := request(t, "POST", "/user", token, body, &res); code != 200 {
		t.Fatalf("Registration got status %d: %s",
			code,
			res.Error)
	} else if !res.Status {
		t.Fatalf("Registration failed: %s", res.Error)
	}

	res = objects.SettingsResponse{}

	if code := request(t, "POST", "/user", token, body, &res); code != 200 {
		t.Fatalf("Repeated registration got status %d: %s",
			code,
			res.Error)
	} else if res.Message != "Already registered" {
		t.Errorf("Repeated registration should be a no-op, got %q",
			res.Message)
	}

	// A token with an unknown subject can register, but not read data.
	var other objects.Response
	if code := request(t, "GET", "/settings", mkToken("auth0|stranger"), "", &other); code != 404 {
		t.Errorf("Request for an unknown subject got status %d (expected 404)",
			code)
	}
} // func TestRegister(t *testing.T)

func TestAlarmFlow(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var (
		token = mkToken(subject)
		list  objects.AlarmListResponse
	)

	if code := request(t, "GET", "/alarm/all", token, "", &list); code != 200 {
		t.Fatalf("Getting alarms got status %d: %s",
			code,
			list.Error)
	} else if len(list.Alarms) != objects.SlotCount {
		t.Fatalf("Unexpected number of Alarms: %d (expected %d)",
			len(list.Alarms),
			objects.SlotCount)
	} else if list.Alarms[0].Hour != 8 || list.Alarms[1].Hour != 13 || list.Alarms[2].Hour != 20 {
		t.Fatalf("Unexpected default schedule: %s / %s / %s",
			list.Alarms[0].TimeString(),
			list.Alarms[1].TimeString(),
			list.Alarms[2].TimeString())
	}

	var res objects.Response

	if code := request(t, "POST", "/alarm/set", token, `{"index": 1, "hour": 14, "minute": 30}`, &res); code != 200 {
		t.Fatalf("Setting alarm got status %d: %s",
			code,
			res.Error)
	}

	res = objects.Response{}

	if code := request(t, "POST", "/alarm/set", token, `{"index": 1, "hour": 29, "minute": 30}`, &res); code != 400 {
		t.Errorf("Setting an alarm to hour 29 got status %d (expected 400)",
			code)
	}

	var tog objects.ToggleResponse

	if code := request(t, "POST", "/alarm/1/toggle", token, "", &tog); code != 200 {
		t.Fatalf("Toggling alarm got status %d: %s",
			code,
			tog.Error)
	} else if tog.Enabled {
		t.Error("Toggling a fresh alarm should disable it")
	}

	if code := request(t, "POST", "/alarm/7/toggle", token, "", &tog); code != 400 && code != 404 {
		t.Errorf("Toggling alarm 7 got status %d (expected 400 or 404)",
			code)
	}
} // func TestAlarmFlow(t *testing.T)

func TestLogAndStats(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var (
		token = mkToken(subject)
		lres  objects.LogResponse
	)

	if code := request(t, "POST", "/adherence/log", token, `{"alarmIndex": 0, "status": "taken_on_time"}`, &lres); code != 200 {
		t.Fatalf("Logging a dose got status %d: %s",
			code,
			lres.Error)
	} else if lres.Log == nil {
		t.Fatal("Logging a dose returned no log entry")
	}

	lres = objects.LogResponse{}

	if code := request(t, "POST", "/adherence/log", token, `{"alarmIndex": 0, "status": "taken_on_time"}`, &lres); code != 409 {
		t.Errorf("Logging the same dose twice got status %d (expected 409)",
			code)
	}

	lres = objects.LogResponse{}

	if code := request(t, "POST", "/adherence/log", token, `{"alarmIndex": 0, "status": "sort_of_taken"}`, &lres); code != 400 {
		t.Errorf("Logging an invalid status got status %d (expected 400)",
			code)
	}

	var sres objects.SummaryResponse

	if code := request(t, "GET", "/adherence?days=7", token, "", &sres); code != 200 {
		t.Fatalf("Getting adherence stats got status %d: %s",
			code,
			sres.Error)
	} else if sres.Stats == nil {
		t.Fatal("Adherence reply carries no stats")
	} else if sres.Stats.TotalDoses != 1 || sres.Stats.TakenDoses != 1 {
		t.Errorf("Unexpected dose counts: %d/%d (expected 1/1)",
			sres.Stats.TakenDoses,
			sres.Stats.TotalDoses)
	} else if sres.Stats.AdherenceRate != 100 {
		t.Errorf("Unexpected adherence rate: %d (expected 100)",
			sres.Stats.AdherenceRate)
	} else if len(sres.Logs) != 1 {
		t.Errorf("Unexpected number of logs: %d (expected 1)",
			len(sres.Logs))
	}

	if code := request(t, "GET", "/adherence?days=nineteen", token, "", &sres); code != 400 {
		t.Errorf("An unparseable days parameter got status %d (expected 400)",
			code)
	}
} // func TestLogAndStats(t *testing.T)

func TestSettingsFlow(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var (
		token = mkToken(subject)
		res   objects.SettingsResponse
	)

	if code := request(t, "GET", "/settings", token, "", &res); code != 200 {
		t.Fatalf("Getting settings got status %d: %s",
			code,
			res.Error)
	} else if res.Settings == nil || res.Settings.NotifyEnabled {
		t.Error("Email notifications should start out disabled")
	}

	res = objects.SettingsResponse{}

	if code := request(t, "POST", "/settings", token, `{"emailNotificationsEnabled": true, "notificationDelayMinutes": 15}`, &res); code != 200 {
		t.Fatalf("Saving settings got status %d: %s",
			code,
			res.Error)
	} else if res.Settings == nil || !res.Settings.NotifyEnabled || res.Settings.NotifyDelay != 15 {
		t.Error("Settings were not saved")
	}

	res = objects.SettingsResponse{}

	if code := request(t, "POST", "/settings", token, `{"emailNotificationsEnabled": true, "notificationDelayMinutes": 600}`, &res); code != 400 {
		t.Errorf("An out-of-range delay got status %d (expected 400)",
			code)
	}
} // func TestSettingsFlow(t *testing.T)

func TestSweep(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	// 25 minutes past the evening slot, morning is long past the
	// notification window, afternoon is disabled.
	var (
		err  error
		sent int
		day  = time.Now()
		now  = time.Date(day.Year(), day.Month(), day.Day(), 20, 25, 0, 0, time.Local)
	)

	rec.sent = nil

	if sent, err = back.sweepOnce(now); err != nil {
		t.Fatalf("Sweep failed: %s",
			err.Error())
	} else if sent != 1 {
		t.Fatalf("Sweep sent %d notification(s), expected 1",
			sent)
	} else if len(rec.sent) != 1 || rec.sent[0] != "missed:2:25" {
		t.Fatalf("Unexpected mail log: %v",
			rec.sent)
	}

	// The second sweep must not send the same mail again.
	if sent, err = back.sweepOnce(now); err != nil {
		t.Fatalf("Second sweep failed: %s",
			err.Error())
	} else if sent != 0 {
		t.Errorf("Second sweep sent %d notification(s), expected 0",
			sent)
	}
} // func TestSweep(t *testing.T)

func TestNotifyCheck(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	// The cron endpoint needs no token.
	var res objects.SweepResponse

	if code := request(t, "GET", "/notify/check", "", "", &res); code != 200 {
		t.Fatalf("Notification check got status %d: %s",
			code,
			res.Error)
	} else if !res.Status {
		t.Errorf("Notification check failed: %s",
			res.Error)
	}
} // func TestNotifyCheck(t *testing.T)

func TestNotifyTest(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var (
		token = mkToken(subject)
		res   objects.Response
	)

	rec.sent = nil

	if code := request(t, "GET", "/notify/test", token, "", &res); code != 200 {
		t.Fatalf("Test notification got status %d: %s",
			code,
			res.Error)
	} else if len(rec.sent) != 1 {
		t.Errorf("Unexpected mail log: %v",
			rec.sent)
	}
} // func TestNotifyTest(t *testing.T)

func TestDeviceEndpoint(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var (
		token = mkToken(subject)
		res   objects.DeviceResponse
	)

	if code := request(t, "GET", "/device?action=get_status", token, "", &res); code != 200 {
		t.Fatalf("Device status got status %d: %s",
			code,
			res.Error)
	} else if res.Device == nil || !res.Device.Powered {
		t.Error("Device should report itself as powered")
	}

	res = objects.DeviceResponse{}

	// Alarm 1 was disabled in TestAlarmFlow, toggling it through the
	// device endpoint re-enables it.
	if code := request(t, "POST", "/device", token, `{"action": "toggle_alarm", "index": 1}`, &res); code != 200 {
		t.Fatalf("Device toggle got status %d: %s",
			code,
			res.Error)
	} else if res.Enabled == nil || !*res.Enabled {
		t.Error("Toggling alarm 1 through the device should re-enable it")
	}

	res = objects.DeviceResponse{}

	if code := request(t, "GET", "/device?action=flash_firmware", token, "", &res); code != 400 {
		t.Errorf("An invalid device action got status %d (expected 400)",
			code)
	}
} // func TestDeviceEndpoint(t *testing.T)

func TestDemoData(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var (
		token = mkToken(subject)
		res   objects.CountResponse
	)

	// 5 days x 3 slots, minus the one dose logged for real.
	if code := request(t, "POST", "/demo", token, `{"days": 5}`, &res); code != 200 {
		t.Fatalf("Creating demo data got status %d: %s",
			code,
			res.Error)
	} else if res.Count != 14 {
		t.Errorf("Unexpected number of demo logs: %d (expected 14)",
			res.Count)
	}

	var sres objects.SummaryResponse

	if code := request(t, "GET", "/adherence?days=7", token, "", &sres); code != 200 {
		t.Fatalf("Getting adherence stats got status %d: %s",
			code,
			sres.Error)
	} else if sres.Stats.TotalDoses != 15 {
		t.Errorf("Unexpected number of doses: %d (expected 15)",
			sres.Stats.TotalDoses)
	}

	res = objects.CountResponse{}

	if code := request(t, "DELETE", "/demo", token, "", &res); code != 200 {
		t.Fatalf("Clearing demo data got status %d: %s",
			code,
			res.Error)
	} else if res.Count != 15 {
		t.Errorf("Unexpected number of deleted logs: %d (expected 15)",
			res.Count)
	}
} // func TestDemoData(t *testing.T)

func TestDebugEndpoint(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var res objects.DebugResponse

	if code := request(t, "GET", "/debug", "", "", &res); code != 200 {
		t.Fatalf("Debug endpoint got status %d: %s",
			code,
			res.Error)
	} else if res.UserCount < 1 {
		t.Errorf("Debug endpoint reports %d users, expected at least 1",
			res.UserCount)
	} else if res.AlarmCount < objects.SlotCount {
		t.Errorf("Debug endpoint reports %d alarms, expected at least %d",
			res.AlarmCount,
			objects.SlotCount)
	}
} // func TestDebugEndpoint(t *testing.T)
