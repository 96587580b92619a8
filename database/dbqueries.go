// /home/krylon/go/src/github.com/blicero/asclepius/database/dbqueries.go
// -*- mode: go; coding: utf-8; -*-
// Created on 11. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-25 21:18:46 krylon>

package database

import "github.com/blicero/asclepius/database/query"

var dbQueries = map[query.ID]string{
	query.UserAdd: `
INSERT INTO user (ext_id, email, name, notify_enabled, notify_delay, created)
VALUES           (     ?,     ?,    ?,              ?,            ?,       ?)
`,
	query.UserGetByID: `
SELECT
    ext_id,
    email,
    name,
    notify_enabled,
    notify_delay,
    created
FROM user
WHERE id = ?
`,
	query.UserGetByExtID: `
SELECT
    id,
    email,
    name,
    notify_enabled,
    notify_delay,
    created
FROM user
WHERE ext_id = ?
`,
	query.UserGetNotifiable: `
SELECT
    id,
    ext_id,
    email,
    name,
    notify_delay,
    created
FROM user
WHERE notify_enabled <> 0
ORDER BY id
`,
	query.UserSetSettings: "UPDATE user SET notify_enabled = ?, notify_delay = ? WHERE id = ?",
	query.UserCount:       "SELECT COUNT(id) FROM user",
	query.AlarmAdd: `
INSERT INTO alarm (user_id, idx, hour, minute, enabled, changed)
VALUES            (      ?,   ?,    ?,      ?,       ?,       ?)
`,
	query.AlarmGetByUser: `
SELECT
    id,
    idx,
    hour,
    minute,
    enabled,
    changed
FROM alarm
WHERE user_id = ?
ORDER BY idx
`,
	query.AlarmGetByIndex: `
SELECT
    id,
    hour,
    minute,
    enabled,
    changed
FROM alarm
WHERE user_id = ? AND idx = ?
`,
	query.AlarmSetTime: `
INSERT INTO alarm (user_id, idx, hour, minute, enabled, changed)
VALUES            (      ?,   ?,    ?,      ?,       1,       ?)
ON CONFLICT (user_id, idx) DO UPDATE SET
    hour = excluded.hour,
    minute = excluded.minute,
    changed = excluded.changed
`,
	query.AlarmSetEnabled: "UPDATE alarm SET enabled = ?, changed = ? WHERE user_id = ? AND idx = ?",
	query.AlarmCount:      "SELECT COUNT(id) FROM alarm",
	query.LogAdd: `
INSERT INTO adherence_log (user_id, alarm_idx, scheduled, day, taken_at, status, delay)
VALUES                    (      ?,         ?,         ?,   ?,        ?,      ?,     ?)
`,
	query.LogGetByUser: `
SELECT
    id,
    alarm_idx,
    scheduled,
    taken_at,
    status,
    delay
FROM adherence_log
WHERE user_id = ? AND scheduled >= ?
ORDER BY scheduled DESC
`,
	query.LogGetByDay: `
SELECT
    id,
    scheduled,
    taken_at,
    status,
    delay
FROM adherence_log
WHERE user_id = ? AND alarm_idx = ? AND day = ?
`,
	query.LogDeleteByUser: "DELETE FROM adherence_log WHERE user_id = ?",
	query.NotificationAdd: `
INSERT INTO email_notification (user_id, alarm_idx, scheduled, day, mail_type, success)
VALUES                         (      ?,         ?,         ?,   ?,         ?,       ?)
`,
	query.NotificationGetByDay: `
SELECT
    id,
    scheduled,
    success
FROM email_notification
WHERE user_id = ? AND alarm_idx = ? AND day = ? AND mail_type = ?
`,
}
