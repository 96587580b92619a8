// /home/krylon/go/src/github.com/blicero/asclepius/database/initqueries.go
// -*- mode: go; coding: utf-8; -*-
// Created on 11. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-24 18:40:19 krylon>

package database

var initQueries = []string{
	`
CREATE TABLE user (
    id             INTEGER PRIMARY KEY,
    ext_id         TEXT UNIQUE NOT NULL,
    email          TEXT UNIQUE NOT NULL,
    name           TEXT NOT NULL DEFAULT '',
    notify_enabled INTEGER NOT NULL DEFAULT 0,
    notify_delay   INTEGER NOT NULL DEFAULT 15,
    created        INTEGER NOT NULL,
    CHECK (notify_delay BETWEEN 1 AND 120)
)
`,
	`
CREATE TABLE alarm (
    id      INTEGER PRIMARY KEY,
    user_id INTEGER NOT NULL,
    idx     INTEGER NOT NULL,
    hour    INTEGER NOT NULL,
    minute  INTEGER NOT NULL,
    enabled INTEGER NOT NULL DEFAULT 1,
    changed INTEGER NOT NULL,
    UNIQUE (user_id, idx),
    FOREIGN KEY (user_id) REFERENCES user (id)
        ON DELETE CASCADE
        ON UPDATE RESTRICT,
    CHECK (idx BETWEEN 0 AND 2),
    CHECK (hour BETWEEN 0 AND 23),
    CHECK (minute BETWEEN 0 AND 59)
)
`,
	`
CREATE TABLE adherence_log (
    id        INTEGER PRIMARY KEY,
    user_id   INTEGER NOT NULL,
    alarm_idx INTEGER NOT NULL,
    scheduled INTEGER NOT NULL,
    day       TEXT NOT NULL,
    taken_at  INTEGER,
    status    TEXT NOT NULL,
    delay     INTEGER,
    UNIQUE (user_id, alarm_idx, day),
    FOREIGN KEY (user_id) REFERENCES user (id)
        ON DELETE CASCADE
        ON UPDATE RESTRICT,
    CHECK (alarm_idx BETWEEN 0 AND 2),
    CHECK (status IN ('taken_on_time', 'taken_late', 'missed')),
    CHECK (delay IS NULL OR delay >= 0)
)
`,
	`
CREATE TABLE email_notification (
    id        INTEGER PRIMARY KEY,
    user_id   INTEGER NOT NULL,
    alarm_idx INTEGER NOT NULL,
    scheduled INTEGER NOT NULL,
    day       TEXT NOT NULL,
    mail_type TEXT NOT NULL DEFAULT 'missed_dose',
    success   INTEGER NOT NULL DEFAULT 0,
    UNIQUE (user_id, alarm_idx, day, mail_type),
    FOREIGN KEY (user_id) REFERENCES user (id)
        ON DELETE CASCADE
        ON UPDATE RESTRICT,
    CHECK (alarm_idx BETWEEN 0 AND 2)
)
`,
	"CREATE INDEX log_user_idx ON adherence_log (user_id)",
	"CREATE INDEX log_sched_idx ON adherence_log (scheduled)",
	"CREATE INDEX notification_user_idx ON email_notification (user_id)",
}
