// /home/krylon/go/src/github.com/blicero/asclepius/backend/backend.go
// -*- mode: go; coding: utf-8; -*-
// Created on 19. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-29 19:48:21 krylon>

// Package backend implements the heart of the application: the web
// interface, the periodic sweep for overdue doses, and the glue
// between the database, the device, and the mailer.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/blicero/asclepius/adherence"
	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/config"
	"github.com/blicero/asclepius/database"
	"github.com/blicero/asclepius/device"
	"github.com/blicero/asclepius/logdomain"
	"github.com/blicero/asclepius/mailer"
	"github.com/blicero/asclepius/objects"
	"github.com/didip/tollbooth/v6"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/grandcat/zeroconf"
)

// MailSender is the part of the mailer the Daemon needs. The sweep
// only ever sends missed-dose mails; tests substitute a recorder.
type MailSender interface {
	Send(to, subject, html string) error
	SendMissedDose(u *objects.User, a *objects.Alarm, elapsed int) error
}

// Daemon is the centerpiece of the backend, coordinating between the
// database, the device, the mailer, and the web clients.
type Daemon struct {
	log      *log.Logger
	cfg      *config.Config
	pool     *database.Pool
	dev      *device.Device
	mail     MailSender
	validate *validator.Validate
	lock     sync.RWMutex
	active   bool
	web      http.Server
	router   *mux.Router
	dnssd    *zeroconf.Server
	hostname string
	idLock   sync.Mutex
	idCnt    int64
}

// Summon summons a Daemon and returns it. No sacrifice or idolatry is
// required.
func Summon(cfg *config.Config) (*Daemon, error) {
	var (
		err error
		d   = &Daemon{
			cfg:      cfg,
			active:   true,
			router:   mux.NewRouter(),
			validate: validator.New(),
		}
	)

	if d.log, err = common.GetLogger(logdomain.Backend); err != nil {
		fmt.Printf("ERROR initializing Logger: %s\n",
			err.Error())
		return nil, err
	} else if d.pool, err = database.NewPool(cfg.PoolSize); err != nil {
		d.log.Printf("[ERROR] Cannot initialize database pool: %s\n",
			err.Error())
		return nil, err
	} else if d.dev, err = device.New(d.pool); err != nil {
		d.log.Printf("[ERROR] Cannot initialize device link: %s\n",
			err.Error())
		return nil, err
	} else if d.mail, err = mailer.New(cfg.ResendKey, cfg.MailFrom, cfg.DashboardURL); err != nil {
		d.log.Printf("[ERROR] Cannot initialize mailer: %s\n",
			err.Error())
		return nil, err
	} else if d.hostname, err = os.Hostname(); err != nil {
		d.log.Printf("[ERROR] Cannot determine hostname: %s\n",
			err.Error())
		return nil, err
	}

	d.web.Addr = cfg.Addr
	d.web.ErrorLog = d.log
	d.web.Handler = tollbooth.LimitHandler(
		tollbooth.NewLimiter(cfg.RateLimit, nil),
		d.router)

	if err = d.initWebHandlers(); err != nil {
		d.log.Printf("[ERROR] Failed to initialize web server: %s\n",
			err.Error())
		return nil, err
	}

	if err = d.initDNSSd(); err != nil {
		// Not having DNS-SD is a nuisance, not a reason to refuse to
		// run.
		d.log.Printf("[ERROR] Cannot announce service via DNS-SD: %s\n",
			err.Error())
	}

	go d.serveHTTP()
	go d.sweepLoop()

	return d, nil
} // func Summon(cfg *config.Config) (*Daemon, error)

// IsAlive returns true if the Daemon's active flag is set.
func (d *Daemon) IsAlive() bool {
	d.lock.RLock()
	var alive = d.active
	d.lock.RUnlock()

	return alive
} // func (d *Daemon) IsAlive() bool

// Banish clears the Daemon's active flag, telling components to shut down.
func (d *Daemon) Banish() error {
	var (
		err         error
		ctx, cancel = context.WithTimeout(context.Background(), time.Second*3)
	)
	defer cancel()

	if d.dnssd != nil {
		d.dnssd.Shutdown()
		d.dnssd = nil
	}

	if err = d.web.Shutdown(ctx); err != nil {
		d.log.Printf("[ERROR] Failed to shutdown web server: %s\n",
			err.Error())
	}

	if ctx.Err() != nil {
		err = ctx.Err()
		d.log.Printf("[ERROR] Failed to gracefully shut down web server: %s\n",
			ctx.Err().Error())
		d.web.Close() // nolint: errcheck
	}

	d.lock.Lock()
	d.active = false
	d.lock.Unlock()
	return err
} // func (d *Daemon) Banish() error

func (d *Daemon) getID() int64 {
	d.idLock.Lock()
	d.idCnt++
	var id = d.idCnt
	d.idLock.Unlock()
	return id
} // func (d *Daemon) getID() int64

// sweepLoop periodically checks all opted-in Users for overdue doses.
// The old approach of having the browser poll an endpoint meant no
// emails whenever no dashboard was open, which is exactly when they
// matter most.
func (d *Daemon) sweepLoop() {
	defer d.log.Println("[TRACE] Quitting sweepLoop")

	var tick = time.NewTicker(d.cfg.SweepInterval)
	defer tick.Stop()

	for d.IsAlive() {
		<-tick.C

		var cnt, err = d.sweepOnce(time.Now())

		if err != nil {
			d.log.Printf("[ERROR] Overdue sweep failed: %s\n",
				err.Error())
		} else if cnt > 0 {
			d.log.Printf("[INFO] Overdue sweep sent %d notification(s)\n",
				cnt)
		}
	}
} // func (d *Daemon) sweepLoop()

// sweepOnce walks all notifiable Users and their Alarms, sends
// missed-dose mails where due, and records every attempt. A failure
// for one (user, alarm) pair does not keep the rest of the sweep from
// running.
func (d *Daemon) sweepOnce(now time.Time) (int, error) {
	var (
		err   error
		sent  int
		users []objects.User
		db    = d.pool.Get()
	)

	defer d.pool.Put(db)

	if users, err = db.UserGetNotifiable(); err != nil {
		d.log.Printf("[ERROR] Cannot get notifiable Users: %s\n",
			err.Error())
		return 0, err
	}

	for ui := range users {
		var (
			u      = &users[ui]
			alarms []objects.Alarm
		)

		if alarms, err = db.AlarmGetByUser(u.ID); err != nil {
			d.log.Printf("[ERROR] Cannot get Alarms of User %s: %s\n",
				u.Email,
				err.Error())
			continue
		}

		for ai := range alarms {
			var (
				due     bool
				elapsed int
				a       = &alarms[ai]
			)

			if due, elapsed, err = adherence.ShouldNotify(db, u, a, now); err != nil {
				d.log.Printf("[ERROR] Cannot check Alarm %d of User %s: %s\n",
					a.Index,
					u.Email,
					err.Error())
				continue
			} else if !due {
				continue
			}

			var note = objects.EmailNotification{
				UserID:     u.ID,
				AlarmIndex: a.Index,
				Scheduled:  a.ScheduledFor(now),
				MailType:   objects.MailMissedDose,
			}

			if err = d.mail.SendMissedDose(u, a, elapsed); err != nil {
				d.log.Printf("[ERROR] Cannot send missed-dose mail to %s: %s\n",
					u.Email,
					err.Error())
			} else {
				note.Success = true
				sent++
			}

			// The attempt is recorded either way, we do not retry
			// failed sends.
			if err = db.NotificationAdd(&note); err != nil {
				var cerr *adherence.ConflictError
				if errors.As(err, &cerr) {
					// Another sweep beat us to it.
					continue
				}

				d.log.Printf("[ERROR] Cannot record notification for User %s: %s\n",
					u.Email,
					err.Error())
			}
		}
	}

	return sent, nil
} // func (d *Daemon) sweepOnce(now time.Time) (int, error)
