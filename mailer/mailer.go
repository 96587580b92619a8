// /home/krylon/go/src/github.com/blicero/asclepius/mailer/mailer.go
// -*- mode: go; coding: utf-8; -*-
// Created on 17. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-27 20:14:09 krylon>

// Package mailer sends notification emails through the Resend HTTP
// API. It knows nothing about alarms or schedules beyond what it
// needs to render the message.
package mailer

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/logdomain"
	"github.com/blicero/asclepius/objects"
	"github.com/pquerna/ffjson/ffjson"
)

const (
	apiURL         = "https://api.resend.com/emails"
	requestTimeout = 10 * time.Second
	subjMissedDose = "Medication Reminder - Missed Dose"
)

// The visual style matches the dashboard.
const tmplMissedDose = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #EF7722;">Medication Reminder</h2>
  <p>Hi %s,</p>
  <p>You missed your <strong>%s dose</strong> scheduled for <strong>%s</strong>.</p>
  <p>It's been %d minutes since your scheduled time.</p>
  <p style="background-color: #FFF5ED; border-left: 4px solid #EF7722; padding: 12px; margin: 20px 0;">
    <strong>Please take your medication as soon as possible.</strong>
  </p>
  <p>If you've already taken it, you can log it in the dashboard to keep your records up to date.</p>
  <p>
    <a href="%s"
       style="background-color: #0BA6DF; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block;">
      Open Dashboard
    </a>
  </p>
  <hr style="border: none; border-top: 1px solid #EBEBEB; margin: 24px 0;">
  <p style="color: #6B7280; font-size: 12px;">
    To disable email notifications, visit your Settings page.
  </p>
</div>
`

// message is the request body the Resend API expects.
type message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Mailer is a client for the Resend API.
type Mailer struct {
	log          *log.Logger
	client       http.Client
	url          string
	key          string
	from         string
	dashboardURL string
}

// New creates a Mailer. The key is the Resend API key; if it is
// empty, the Mailer is created anyway, but every send attempt fails.
// That way the rest of the application works normally on an
// unconfigured system, and the failed sends show up in the
// notification log.
func New(key, from, dashboardURL string) (*Mailer, error) {
	var (
		err error
		m   = &Mailer{
			url:          apiURL,
			key:          key,
			from:         from,
			dashboardURL: dashboardURL,
		}
	)

	if m.log, err = common.GetLogger(logdomain.Mailer); err != nil {
		return nil, err
	}

	if m.from == "" {
		m.from = fmt.Sprintf("%s <onboarding@resend.dev>", common.AppName)
	}

	m.client.Timeout = requestTimeout

	if m.key == "" {
		m.log.Println("[INFO] No API key configured, emails will not be sent")
	}

	return m, nil
} // func New(key, from, dashboardURL string) (*Mailer, error)

// Send delivers one email.
func (m *Mailer) Send(to, subject, html string) error {
	if m.key == "" {
		return fmt.Errorf("no mail transport configured")
	}

	var (
		err  error
		body []byte
		msg  = message{
			From:    m.from,
			To:      []string{to},
			Subject: subject,
			HTML:    html,
		}
	)

	if body, err = ffjson.Marshal(&msg); err != nil {
		m.log.Printf("[ERROR] Cannot serialize message to %s: %s\n",
			to,
			err.Error())
		return err
	}

	defer ffjson.Pool(body)

	var req *http.Request

	if req, err = http.NewRequest(http.MethodPost, m.url, bytes.NewReader(body)); err != nil {
		m.log.Printf("[ERROR] Cannot create request: %s\n",
			err.Error())
		return err
	}

	req.Header.Set("Authorization", "Bearer "+m.key)
	req.Header.Set("Content-Type", "application/json")

	var res *http.Response

	if res, err = m.client.Do(req); err != nil {
		m.log.Printf("[ERROR] Cannot send email to %s: %s\n",
			to,
			err.Error())
		return err
	}

	defer res.Body.Close() // nolint: errcheck,gosec

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var detail, _ = io.ReadAll(res.Body) // nolint: errcheck
		err = fmt.Errorf("Sending email failed: %s (%s)",
			res.Status,
			detail)
		m.log.Printf("[ERROR] %s\n",
			err.Error())
		return err
	}

	m.log.Printf("[DEBUG] Sent email %q to %s\n",
		subject,
		to)
	return nil
} // func (m *Mailer) Send(to, subject, html string) error

// SendMissedDose sends the missed-dose notification for the given
// Alarm to the given User. elapsed is the number of minutes since the
// scheduled time.
func (m *Mailer) SendMissedDose(u *objects.User, a *objects.Alarm, elapsed int) error {
	var name = u.Name
	if name == "" {
		name = "there"
	}

	var html = fmt.Sprintf(tmplMissedDose,
		name,
		a.Label(),
		a.TimeString(),
		elapsed,
		m.dashboardURL)

	return m.Send(u.Email, subjMissedDose, html)
} // func (m *Mailer) SendMissedDose(u *objects.User, a *objects.Alarm, elapsed int) error
