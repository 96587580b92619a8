// /home/krylon/go/src/github.com/blicero/asclepius/database/database.go
// -*- mode: go; coding: utf-8; -*-
// Created on 11. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-28 19:32:11 krylon>

// Package database provides the persistence layer, built atop SQLite.
// All durable state lives here: users, their alarm slots, the dose
// log, and the record of notification emails we sent (or tried to).
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/blicero/asclepius/adherence"
	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/database/query"
	"github.com/blicero/asclepius/logdomain"
	"github.com/blicero/asclepius/objects"
	"github.com/blicero/asclepius/objects/dosestatus"
	"github.com/blicero/krylib"
	"github.com/mattn/go-sqlite3" // Implicitly registers the database driver
)

var (
	openLock sync.Mutex
	idCnt    int64
)

// ErrTxInProgress indicates that an attempt to initiate a transaction
// failed because there is already one in progress.
var ErrTxInProgress = errors.New("A Transaction is already in progress")

// ErrNoTxInProgress indicates that an attempt was made to finish a
// transaction when none was active.
var ErrNoTxInProgress = errors.New("There is no transaction in progress")

// If a query returns an error and the error text is matched by this
// regex, we consider the error as transient and try again after a
// short delay.
var retryPat = regexp.MustCompile("(?i)database is (?:locked|busy)")

// worthARetry returns true if an error returned from the database
// is matched by the retryPat regex.
func worthARetry(e error) bool {
	return retryPat.MatchString(e.Error())
} // func worthARetry(e error) bool

// retryDelay is the amount of time we wait before we repeat a database
// operation that failed due to a transient error.
const retryDelay = 25 * time.Millisecond

func waitForRetry() {
	time.Sleep(retryDelay)
} // func waitForRetry()

// isConstraintError returns true if the given error is SQLite telling
// us a uniqueness constraint was violated. The per-day UNIQUE
// constraints on adherence_log and email_notification are what makes
// LogAdd and NotificationAdd atomic insert-if-absent operations.
func isConstraintError(e error) bool {
	var serr sqlite3.Error
	return errors.As(e, &serr) && serr.Code == sqlite3.ErrConstraint
} // func isConstraintError(e error) bool

// Database wraps a database connection and provides the operations on
// the data stored therein.
//
// It is not safe to share a Database instance between goroutines,
// but opening multiple connections to the same Database file is safe
// and cheap, see Pool.
type Database struct {
	id      int64
	db      *sql.DB
	tx      *sql.Tx
	log     *log.Logger
	path    string
	queries map[query.ID]*sql.Stmt
}

// Open opens a Database. If the database specified by the path does
// not exist, yet, it is created and initialized.
func Open(path string) (*Database, error) {
	var (
		err      error
		dbExists bool
		db       = &Database{
			path:    path,
			queries: make(map[query.ID]*sql.Stmt),
		}
	)

	openLock.Lock()
	idCnt++
	db.id = idCnt
	openLock.Unlock()

	if db.log, err = common.GetLogger(logdomain.Database); err != nil {
		return nil, err
	}

	var connstring = fmt.Sprintf("%s?_locking=NORMAL&_journal=WAL&_fk=1&recursive_triggers=0",
		path)

	if dbExists, err = krylib.Fexists(path); err != nil {
		db.log.Printf("[ERROR] Failed to check if database file %s exists: %s\n",
			path,
			err.Error())
		return nil, err
	} else if db.db, err = sql.Open("sqlite3", connstring); err != nil {
		db.log.Printf("[ERROR] Failed to open %s: %s\n",
			path,
			err.Error())
		return nil, err
	}

	if !dbExists {
		if err = db.initialize(); err != nil {
			var e2 error
			if e2 = db.db.Close(); e2 != nil {
				db.log.Printf("[CRITICAL] Failed to close database: %s\n",
					e2.Error())
				return nil, e2
			} else if e2 = os.Remove(path); e2 != nil {
				db.log.Printf("[CRITICAL] Failed to remove database file %s: %s\n",
					db.path,
					e2.Error())
			}
			return nil, err
		}
		db.log.Printf("[INFO] Database at %s has been initialized\n",
			path)
	}

	return db, nil
} // func Open(path string) (*Database, error)

func (db *Database) initialize() error {
	var err error
	var tx *sql.Tx

	if tx, err = db.db.Begin(); err != nil {
		db.log.Printf("[ERROR] Cannot begin transaction: %s\n",
			err.Error())
		return err
	}

	for _, q := range initQueries {
		db.log.Printf("[TRACE] Execute init query:\n%s\n",
			q)
		if _, err = tx.Exec(q); err != nil {
			db.log.Printf("[ERROR] Cannot execute init query: %s\n%s\n",
				err.Error(),
				q)
			if rbErr := tx.Rollback(); rbErr != nil {
				db.log.Printf("[CANTHAPPEN] Cannot rollback transaction: %s\n",
					rbErr.Error())
				return rbErr
			}
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		db.log.Printf("[CANTHAPPEN] Failed to commit init transaction: %s\n",
			err.Error())
		return err
	}

	return nil
} // func (db *Database) initialize() error

// Close closes the database.
// If there is a pending transaction, it is rolled back.
func (db *Database) Close() error {
	// I wonder if would make more snese to panic() if something goes
	// wrong here.
	var err error

	if db.tx != nil {
		if err = db.tx.Rollback(); err != nil {
			db.log.Printf("[CRITICAL] Cannot roll back pending transaction: %s\n",
				err.Error())
			return err
		}
		db.tx = nil
	}

	for key, stmt := range db.queries {
		if err = stmt.Close(); err != nil {
			db.log.Printf("[CRITICAL] Cannot close statement handle %s: %s\n",
				key,
				err.Error())
			return err
		}
		delete(db.queries, key)
	}

	if err = db.db.Close(); err != nil {
		db.log.Printf("[CRITICAL] Cannot close database: %s\n",
			err.Error())
	}

	db.db = nil
	return nil
} // func (db *Database) Close() error

func (db *Database) getQuery(id query.ID) (*sql.Stmt, error) {
	var (
		stmt *sql.Stmt
		ok   bool
		err  error
	)

	if stmt, ok = db.queries[id]; ok {
		return stmt, nil
	} else if _, ok = dbQueries[id]; !ok {
		return nil, fmt.Errorf("Unknown query %d",
			id)
	}

PREPARE_QUERY:
	if stmt, err = db.db.Prepare(dbQueries[id]); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto PREPARE_QUERY
		}

		db.log.Printf("[ERROR] Cannot parse query %s: %s\n%s\n",
			id,
			err.Error(),
			dbQueries[id])
		return nil, err
	}

	db.queries[id] = stmt
	return stmt, nil
} // func (db *Database) getQuery(query.ID) (*sql.Stmt, error)

// Begin begins an explicit database transaction.
// Only one transaction can be in progress at once, attempting to start
// one, while another transaction is already in progress will yield
// ErrTxInProgress.
func (db *Database) Begin() error {
	var err error

	db.log.Printf("[DEBUG] Database#%d Begin Transaction\n",
		db.id)

	if db.tx != nil {
		return ErrTxInProgress
	}

BEGIN_TX:
	for db.tx == nil {
		if db.tx, err = db.db.Begin(); err != nil {
			if worthARetry(err) {
				waitForRetry()
				continue BEGIN_TX
			}

			db.log.Printf("[ERROR] Failed to start transaction: %s\n",
				err.Error())
			return err
		}
	}

	return nil
} // func (db *Database) Begin() error

// Rollback terminates a pending transaction, undoing any changes to the
// database made during that transaction.
// If no transaction is active, it returns ErrNoTxInProgress
func (db *Database) Rollback() error {
	var err error

	db.log.Printf("[DEBUG] Database#%d Roll back Transaction\n",
		db.id)

	if db.tx == nil {
		return ErrNoTxInProgress
	} else if err = db.tx.Rollback(); err != nil {
		return fmt.Errorf("Cannot roll back database transaction: %s",
			err.Error())
	}

	db.tx = nil
	return nil
} // func (db *Database) Rollback() error

// Commit ends the active transaction, making any changes made during
// that transaction permanent and visible to other connections.
// If no transaction is active, it returns ErrNoTxInProgress
func (db *Database) Commit() error {
	var err error

	db.log.Printf("[DEBUG] Database#%d Commit Transaction\n",
		db.id)

	if db.tx == nil {
		return ErrNoTxInProgress
	} else if err = db.tx.Commit(); err != nil {
		return fmt.Errorf("Cannot commit transaction: %s",
			err.Error())
	}

	db.tx = nil
	return nil
} // func (db *Database) Commit() error

// UserAdd adds a new User to the database, filling in the generated ID
// and creation timestamp.
func (db *Database) UserAdd(u *objects.User) error {
	const qid query.ID = query.UserAdd
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var res sql.Result

	if u.Created.IsZero() {
		u.Created = time.Now()
	}

EXEC_QUERY:
	if res, err = stmt.Exec(u.ExtID, u.Email, u.Name, u.NotifyEnabled, u.NotifyDelay, u.Created.Unix()); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		} else if isConstraintError(err) {
			return &adherence.ConflictError{
				Msg: fmt.Sprintf("User %s already exists", u.Email),
			}
		}

		db.log.Printf("[ERROR] Cannot add User %s to database: %s\n",
			u.Email,
			err.Error())
		return err
	}

	if u.ID, err = res.LastInsertId(); err != nil {
		db.log.Printf("[ERROR] Cannot get ID of new User %s: %s\n",
			u.Email,
			err.Error())
		return err
	}

	return nil
} // func (db *Database) UserAdd(u *objects.User) error

// UserGetByID fetches a User by their database ID.
// If no such User exists, it returns nil, but no error.
func (db *Database) UserGetByID(id int64) (*objects.User, error) {
	const qid query.ID = query.UserGetByID
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(id); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query User %d: %s\n",
			id,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck,gosec

	if rows.Next() {
		var (
			created int64
			u       = &objects.User{ID: id}
		)

		if err = rows.Scan(&u.ExtID, &u.Email, &u.Name, &u.NotifyEnabled, &u.NotifyDelay, &created); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		u.Created = time.Unix(created, 0)
		return u, nil
	}

	return nil, nil
} // func (db *Database) UserGetByID(id int64) (*objects.User, error)

// UserGetByExtID fetches a User by the subject identifier the identity
// provider knows them by.
// If no such User exists, it returns nil, but no error.
func (db *Database) UserGetByExtID(extID string) (*objects.User, error) {
	const qid query.ID = query.UserGetByExtID
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(extID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query User %s: %s\n",
			extID,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck,gosec

	if rows.Next() {
		var (
			created int64
			u       = &objects.User{ExtID: extID}
		)

		if err = rows.Scan(&u.ID, &u.Email, &u.Name, &u.NotifyEnabled, &u.NotifyDelay, &created); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		u.Created = time.Unix(created, 0)
		return u, nil
	}

	return nil, nil
} // func (db *Database) UserGetByExtID(extID string) (*objects.User, error)

// UserGetNotifiable fetches all Users that have opted into email
// notifications.
func (db *Database) UserGetNotifiable() ([]objects.User, error) {
	const qid query.ID = query.UserGetNotifiable
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query notifiable Users: %s\n",
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck,gosec

	var users = make([]objects.User, 0, 8)

	for rows.Next() {
		var (
			created int64
			u       = objects.User{NotifyEnabled: true}
		)

		if err = rows.Scan(&u.ID, &u.ExtID, &u.Email, &u.Name, &u.NotifyDelay, &created); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		u.Created = time.Unix(created, 0)
		users = append(users, u)
	}

	return users, nil
} // func (db *Database) UserGetNotifiable() ([]objects.User, error)

// UserSetSettings updates a User's notification preferences, both in
// the database and on the User object itself.
func (db *Database) UserSetSettings(u *objects.User, s objects.Settings) error {
	const qid query.ID = query.UserSetSettings
	var (
		err  error
		stmt *sql.Stmt
	)

	if s.NotifyDelay < 1 || s.NotifyDelay > 120 {
		return &adherence.ValidationError{
			Msg: fmt.Sprintf("Notification delay must be 1-120 minutes, not %d",
				s.NotifyDelay),
		}
	}

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

EXEC_QUERY:
	if _, err = stmt.Exec(s.NotifyEnabled, s.NotifyDelay, u.ID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot update settings of User %s: %s\n",
			u.Email,
			err.Error())
		return err
	}

	u.NotifyEnabled = s.NotifyEnabled
	u.NotifyDelay = s.NotifyDelay
	return nil
} // func (db *Database) UserSetSettings(u *objects.User, s objects.Settings) error

// UserCount returns the number of Users in the database.
func (db *Database) UserCount() (int64, error) {
	return db.countRows(query.UserCount)
} // func (db *Database) UserCount() (int64, error)

// AlarmCount returns the number of Alarms in the database.
func (db *Database) AlarmCount() (int64, error) {
	return db.countRows(query.AlarmCount)
} // func (db *Database) AlarmCount() (int64, error)

func (db *Database) countRows(qid query.ID) (int64, error) {
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return 0, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot execute query %s: %s\n",
			qid,
			err.Error())
		return 0, err
	}

	defer rows.Close() // nolint: errcheck,gosec

	var cnt int64

	if rows.Next() {
		if err = rows.Scan(&cnt); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return 0, err
		}
	}

	return cnt, nil
} // func (db *Database) countRows(qid query.ID) (int64, error)

// AlarmAdd adds an Alarm to the database, filling in the generated ID.
func (db *Database) AlarmAdd(a *objects.Alarm) error {
	const qid query.ID = query.AlarmAdd
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var res sql.Result

	if a.Changed.IsZero() {
		a.Changed = time.Now()
	}

EXEC_QUERY:
	if res, err = stmt.Exec(a.UserID, a.Index, a.Hour, a.Minute, a.Enabled, a.Changed.Unix()); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		} else if isConstraintError(err) {
			return &adherence.ConflictError{
				Msg: fmt.Sprintf("User %d already has an alarm at slot %d",
					a.UserID,
					a.Index),
			}
		}

		db.log.Printf("[ERROR] Cannot add Alarm %d/%d to database: %s\n",
			a.UserID,
			a.Index,
			err.Error())
		return err
	}

	if a.ID, err = res.LastInsertId(); err != nil {
		db.log.Printf("[ERROR] Cannot get ID of new Alarm: %s\n",
			err.Error())
		return err
	}

	return nil
} // func (db *Database) AlarmAdd(a *objects.Alarm) error

// AlarmInstallDefaults creates the default set of Alarms for the given
// User and returns them. All three slots are written in a single
// transaction so a User either has a full schedule or none at all.
func (db *Database) AlarmInstallDefaults(userID int64) ([]objects.Alarm, error) {
	var (
		err    error
		status bool
		alarms = objects.DefaultAlarms(userID)
	)

	if err = db.Begin(); err != nil {
		db.log.Printf("[ERROR] Cannot begin transaction: %s\n",
			err.Error())
		return nil, err
	}

	defer func() {
		if status {
			if err = db.Commit(); err != nil {
				db.log.Printf("[ERROR] Cannot commit transaction: %s\n",
					err.Error())
			}
		} else if err = db.Rollback(); err != nil {
			db.log.Printf("[ERROR] Cannot roll back transaction: %s\n",
				err.Error())
		}
	}()

	for i := range alarms {
		if err = db.AlarmAdd(&alarms[i]); err != nil {
			db.log.Printf("[ERROR] Cannot install default Alarm %d for User %d: %s\n",
				i,
				userID,
				err.Error())
			return nil, err
		}
	}

	status = true
	return alarms, nil
} // func (db *Database) AlarmInstallDefaults(userID int64) ([]objects.Alarm, error)

// AlarmGetByUser fetches all of a User's Alarms, ordered by slot index.
func (db *Database) AlarmGetByUser(userID int64) ([]objects.Alarm, error) {
	const qid query.ID = query.AlarmGetByUser
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(userID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query Alarms of User %d: %s\n",
			userID,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck,gosec

	var alarms = make([]objects.Alarm, 0, objects.SlotCount)

	for rows.Next() {
		var (
			changed int64
			a       = objects.Alarm{UserID: userID}
		)

		if err = rows.Scan(&a.ID, &a.Index, &a.Hour, &a.Minute, &a.Enabled, &changed); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		a.Changed = time.Unix(changed, 0)
		alarms = append(alarms, a)
	}

	return alarms, nil
} // func (db *Database) AlarmGetByUser(userID int64) ([]objects.Alarm, error)

// AlarmGetByIndex fetches one of a User's Alarms by its slot index.
// If no such Alarm exists, it returns nil, but no error.
func (db *Database) AlarmGetByIndex(userID int64, idx int) (*objects.Alarm, error) {
	const qid query.ID = query.AlarmGetByIndex
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(userID, idx); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query Alarm %d/%d: %s\n",
			userID,
			idx,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck,gosec

	if rows.Next() {
		var (
			changed int64
			a       = &objects.Alarm{UserID: userID, Index: idx}
		)

		if err = rows.Scan(&a.ID, &a.Hour, &a.Minute, &a.Enabled, &changed); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		a.Changed = time.Unix(changed, 0)
		return a, nil
	}

	return nil, nil
} // func (db *Database) AlarmGetByIndex(userID int64, idx int) (*objects.Alarm, error)

// AlarmSetTime sets the time of the Alarm at the given slot, creating
// the Alarm if the User does not have one there, yet. Setting the time
// re-enables a disabled Alarm.
func (db *Database) AlarmSetTime(userID int64, idx, hour, minute int) error {
	const qid query.ID = query.AlarmSetTime
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

EXEC_QUERY:
	if _, err = stmt.Exec(userID, idx, hour, minute, time.Now().Unix()); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot set Alarm %d/%d to %02d:%02d: %s\n",
			userID,
			idx,
			hour,
			minute,
			err.Error())
		return err
	}

	return nil
} // func (db *Database) AlarmSetTime(userID int64, idx, hour, minute int) error

// AlarmSetEnabled enables or disables the Alarm at the given slot.
func (db *Database) AlarmSetEnabled(userID int64, idx int, enabled bool) error {
	const qid query.ID = query.AlarmSetEnabled
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

EXEC_QUERY:
	if _, err = stmt.Exec(enabled, time.Now().Unix(), userID, idx); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot toggle Alarm %d/%d: %s\n",
			userID,
			idx,
			err.Error())
		return err
	}

	return nil
} // func (db *Database) AlarmSetEnabled(userID int64, idx int, enabled bool) error

// LogAdd adds an AdherenceLog to the database, filling in the
// generated ID. If a log already exists for the same User, slot, and
// calendar day, it returns a ConflictError without touching the
// database; the UNIQUE constraint makes this safe against concurrent
// writers.
func (db *Database) LogAdd(l *objects.AdherenceLog) error {
	const qid query.ID = query.LogAdd
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var (
		res     sql.Result
		takenAt *int64
	)

	if l.TakenAt != nil {
		var stamp = l.TakenAt.Unix()
		takenAt = &stamp
	}

EXEC_QUERY:
	if res, err = stmt.Exec(l.UserID, l.AlarmIndex, l.Scheduled.Unix(), l.Day(), takenAt, l.Status.String(), l.Delay); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		} else if isConstraintError(err) {
			return &adherence.ConflictError{
				Msg: fmt.Sprintf("Dose already logged for alarm %d on %s",
					l.AlarmIndex,
					l.Day()),
			}
		}

		db.log.Printf("[ERROR] Cannot add AdherenceLog %d/%d/%s to database: %s\n",
			l.UserID,
			l.AlarmIndex,
			l.Day(),
			err.Error())
		return err
	}

	if l.ID, err = res.LastInsertId(); err != nil {
		db.log.Printf("[ERROR] Cannot get ID of new AdherenceLog: %s\n",
			err.Error())
		return err
	}

	return nil
} // func (db *Database) LogAdd(l *objects.AdherenceLog) error

// LogGetByUser fetches a User's AdherenceLogs scheduled at or after
// the given point in time, most recent first.
func (db *Database) LogGetByUser(userID int64, since time.Time) ([]objects.AdherenceLog, error) {
	const qid query.ID = query.LogGetByUser
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(userID, since.Unix()); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query AdherenceLogs of User %d: %s\n",
			userID,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck,gosec

	var logs = make([]objects.AdherenceLog, 0, 32)

	for rows.Next() {
		var l objects.AdherenceLog

		if l, err = db.scanLog(rows, userID, true); err != nil {
			return nil, err
		}

		logs = append(logs, l)
	}

	return logs, nil
} // func (db *Database) LogGetByUser(userID int64, since time.Time) ([]objects.AdherenceLog, error)

// LogGetByDay fetches the AdherenceLog for the given User, slot, and
// calendar day.
// If no such log exists, it returns nil, but no error.
func (db *Database) LogGetByDay(userID int64, idx int, day string) (*objects.AdherenceLog, error) {
	const qid query.ID = query.LogGetByDay
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(userID, idx, day); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query AdherenceLog %d/%d/%s: %s\n",
			userID,
			idx,
			day,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck,gosec

	if rows.Next() {
		var l objects.AdherenceLog

		if l, err = db.scanLog(rows, userID, false); err != nil {
			return nil, err
		}

		l.AlarmIndex = idx
		return &l, nil
	}

	return nil, nil
} // func (db *Database) LogGetByDay(userID int64, idx int, day string) (*objects.AdherenceLog, error)

// scanLog reads one AdherenceLog from the given result set. withIdx
// says whether the row includes the alarm_idx column.
func (db *Database) scanLog(rows *sql.Rows, userID int64, withIdx bool) (objects.AdherenceLog, error) {
	var (
		err       error
		scheduled int64
		takenAt   sql.NullInt64
		delay     sql.NullInt64
		status    string
		l         = objects.AdherenceLog{UserID: userID}
	)

	if withIdx {
		err = rows.Scan(&l.ID, &l.AlarmIndex, &scheduled, &takenAt, &status, &delay)
	} else {
		err = rows.Scan(&l.ID, &scheduled, &takenAt, &status, &delay)
	}

	if err != nil {
		db.log.Printf("[ERROR] Cannot scan row: %s\n",
			err.Error())
		return l, err
	}

	l.Scheduled = time.Unix(scheduled, 0)

	if takenAt.Valid {
		var stamp = time.Unix(takenAt.Int64, 0)
		l.TakenAt = &stamp
	}

	if delay.Valid {
		var d = delay.Int64
		l.Delay = &d
	}

	if l.Status, err = dosestatus.Parse(status); err != nil {
		db.log.Printf("[CANTHAPPEN] Invalid dose status %q in database: %s\n",
			status,
			err.Error())
		return l, err
	}

	return l, nil
} // func (db *Database) scanLog(rows *sql.Rows, userID int64, withIdx bool) (objects.AdherenceLog, error)

// LogDeleteByUser removes all of a User's AdherenceLogs and returns
// the number of removed rows.
func (db *Database) LogDeleteByUser(userID int64) (int64, error) {
	const qid query.ID = query.LogDeleteByUser
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return 0, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var res sql.Result

EXEC_QUERY:
	if res, err = stmt.Exec(userID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot delete AdherenceLogs of User %d: %s\n",
			userID,
			err.Error())
		return 0, err
	}

	var cnt int64

	if cnt, err = res.RowsAffected(); err != nil {
		db.log.Printf("[ERROR] Cannot get number of deleted AdherenceLogs: %s\n",
			err.Error())
		return 0, err
	}

	return cnt, nil
} // func (db *Database) LogDeleteByUser(userID int64) (int64, error)

// NotificationAdd records a notification email, filling in the
// generated ID. If one is already recorded for the same User, slot,
// day, and mail type, it returns a ConflictError. The row is written
// whether or not the send succeeded, failed sends are not retried.
func (db *Database) NotificationAdd(n *objects.EmailNotification) error {
	const qid query.ID = query.NotificationAdd
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var res sql.Result

	if n.MailType == "" {
		n.MailType = objects.MailMissedDose
	}

EXEC_QUERY:
	if res, err = stmt.Exec(n.UserID, n.AlarmIndex, n.Scheduled.Unix(), n.Day(), n.MailType, n.Success); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		} else if isConstraintError(err) {
			return &adherence.ConflictError{
				Msg: fmt.Sprintf("Notification already recorded for alarm %d on %s",
					n.AlarmIndex,
					n.Day()),
			}
		}

		db.log.Printf("[ERROR] Cannot add EmailNotification %d/%d/%s to database: %s\n",
			n.UserID,
			n.AlarmIndex,
			n.Day(),
			err.Error())
		return err
	}

	if n.ID, err = res.LastInsertId(); err != nil {
		db.log.Printf("[ERROR] Cannot get ID of new EmailNotification: %s\n",
			err.Error())
		return err
	}

	return nil
} // func (db *Database) NotificationAdd(n *objects.EmailNotification) error

// NotificationGetByDay fetches the notification recorded for the given
// User, slot, calendar day, and mail type.
// If no such notification exists, it returns nil, but no error.
func (db *Database) NotificationGetByDay(userID int64, idx int, day, mailType string) (*objects.EmailNotification, error) {
	const qid query.ID = query.NotificationGetByDay
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(userID, idx, day, mailType); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query EmailNotification %d/%d/%s: %s\n",
			userID,
			idx,
			day,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck,gosec

	if rows.Next() {
		var (
			scheduled int64
			n         = &objects.EmailNotification{
				UserID:     userID,
				AlarmIndex: idx,
				MailType:   mailType,
			}
		)

		if err = rows.Scan(&n.ID, &scheduled, &n.Success); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		n.Scheduled = time.Unix(scheduled, 0)
		return n, nil
	}

	return nil, nil
} // func (db *Database) NotificationGetByDay(userID int64, idx int, day, mailType string) (*objects.EmailNotification, error)
