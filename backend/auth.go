// /home/krylon/go/src/github.com/blicero/asclepius/backend/auth.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-29 20:24:13 krylon>

package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/blicero/asclepius/adherence"
	"github.com/blicero/asclepius/database"
	"github.com/blicero/asclepius/objects"
	"github.com/golang-jwt/jwt"
)

// The actual login dance happens at the identity provider; what
// reaches us is a bearer token signed with a shared secret. All we
// care about is the subject claim, which we use as the opaque key to
// look up the User.

type ctxKey uint8

const ctxSubject ctxKey = 0

// authenticate verifies the bearer token on incoming requests and
// stashes the subject claim in the request context.
func (d *Daemon) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			err     error
			subject string
			token   *jwt.Token
			header  = r.Header.Get("Authorization")
			res     = objects.Response{ID: d.getID(), Error: "Unauthorized"}
		)

		var fields = strings.Split(header, " ")

		if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
			d.log.Printf("[DEBUG] Request to %s without usable Authorization header\n",
				r.URL)
			d.sendResponseJSON(w, http.StatusUnauthorized, &res)
			return
		}

		token, err = jwt.Parse(fields[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("Unexpected signing method %v",
					t.Header["alg"])
			}
			return []byte(d.cfg.AuthSecret), nil
		})

		if err != nil || !token.Valid {
			if err == nil {
				err = fmt.Errorf("token is not valid")
			}
			d.log.Printf("[DEBUG] Rejecting token for %s: %s\n",
				r.URL,
				err.Error())
			d.sendResponseJSON(w, http.StatusUnauthorized, &res)
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			subject, _ = claims["sub"].(string) // nolint: errcheck
		}

		if subject == "" {
			d.log.Printf("[DEBUG] Token for %s carries no subject\n",
				r.URL)
			d.sendResponseJSON(w, http.StatusUnauthorized, &res)
			return
		}

		var ctx = context.WithValue(r.Context(), ctxSubject, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
} // func (d *Daemon) authenticate(next http.Handler) http.Handler

// subject returns the authenticated subject of the request.
func (d *Daemon) subject(r *http.Request) string {
	var s, _ = r.Context().Value(ctxSubject).(string) // nolint: errcheck
	return s
} // func (d *Daemon) subject(r *http.Request) string

// currentUser looks up the User the request was authenticated as.
func (d *Daemon) currentUser(r *http.Request, db *database.Database) (*objects.User, error) {
	var (
		err error
		u   *objects.User
		sub = d.subject(r)
	)

	if u, err = db.UserGetByExtID(sub); err != nil {
		return nil, err
	} else if u == nil {
		return nil, &adherence.NotFoundError{What: "User"}
	}

	return u, nil
} // func (d *Daemon) currentUser(r *http.Request, db *database.Database) (*objects.User, error)
