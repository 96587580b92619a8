// /home/krylon/go/src/github.com/blicero/asclepius/mailer/01_mailer_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 17. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-27 21:02:33 krylon>

package mailer

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/objects"
	"github.com/pquerna/ffjson/ffjson"
)

func TestMain(m *testing.M) {
	var (
		err     error
		result  int
		baseDir = time.Now().Format("/tmp/asclepius_mailer_test_20060102_150405")
	)

	if err = common.SetBaseDir(baseDir); err != nil {
		fmt.Printf("Cannot set base directory to %s: %s\n",
			baseDir,
			err.Error())
		os.Exit(1)
	} else if result = m.Run(); result == 0 {
		_ = os.RemoveAll(baseDir)
	} else {
		fmt.Printf(">>> TEST DIRECTORY: %s\n",
			baseDir)
	}

	os.Exit(result)
} // func TestMain(m *testing.M)

func TestSendMissedDose(t *testing.T) {
	var received message

	var srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer hocus-pocus" {
			t.Errorf("Unexpected Authorization header: %q",
				r.Header.Get("Authorization"))
		}

		var body, err = io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("Cannot read request body: %s",
				err.Error())
		} else if err = ffjson.Unmarshal(body, &received); err != nil {
			t.Errorf("Cannot parse request body: %s",
				err.Error())
		}

		w.WriteHeader(200)
		fmt.Fprintln(w, `{"id": "cafebabe"}`)
	}))
	defer srv.Close()

	var (
		err error
		m   *Mailer
		u   = &objects.User{
			Email: "patient@example.com",
			Name:  "Ben",
		}
		a = &objects.Alarm{
			Index:  2,
			Hour:   20,
			Minute: 0,
		}
	)

	if m, err = New("hocus-pocus", "", "http://localhost:7202/"); err != nil {
		t.Fatalf("Cannot create Mailer: %s",
			err.Error())
	}

	m.url = srv.URL

	if err = m.SendMissedDose(u, a, 25); err != nil {
		t.Fatalf("Cannot send missed-dose email: %s",
			err.Error())
	}

	if len(received.To) != 1 || received.To[0] != u.Email {
		t.Errorf("Email went to the wrong address: %v",
			received.To)
	} else if received.Subject != subjMissedDose {
		t.Errorf("Unexpected subject: %q",
			received.Subject)
	} else if !strings.Contains(received.HTML, "Evening dose") {
		t.Error("Email body does not name the missed slot")
	} else if !strings.Contains(received.HTML, "8:00 PM") {
		t.Error("Email body does not name the scheduled time")
	} else if !strings.Contains(received.HTML, "25 minutes") {
		t.Error("Email body does not say how late the dose is")
	}
} // func TestSendMissedDose(t *testing.T)

func TestSendUnconfigured(t *testing.T) {
	var (
		err error
		m   *Mailer
	)

	if m, err = New("", "", ""); err != nil {
		t.Fatalf("Cannot create Mailer: %s",
			err.Error())
	}

	if err = m.Send("patient@example.com", "Test", "<p>Test</p>"); err == nil {
		t.Error("Sending without an API key should fail")
	}
} // func TestSendUnconfigured(t *testing.T)

func TestSendAPIError(t *testing.T) {
	var srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(422)
		fmt.Fprintln(w, `{"message": "invalid from address"}`)
	}))
	defer srv.Close()

	var (
		err error
		m   *Mailer
	)

	if m, err = New("hocus-pocus", "", ""); err != nil {
		t.Fatalf("Cannot create Mailer: %s",
			err.Error())
	}

	m.url = srv.URL

	if err = m.Send("patient@example.com", "Test", "<p>Test</p>"); err == nil {
		t.Error("A rejected send should be reported as an error")
	}
} // func TestSendAPIError(t *testing.T)
