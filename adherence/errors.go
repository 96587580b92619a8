// /home/krylon/go/src/github.com/blicero/asclepius/adherence/errors.go
// -*- mode: go; coding: utf-8; -*-
// Created on 07. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-21 20:18:30 krylon>

package adherence

import "fmt"

// The engine distinguishes three failure categories the web layer
// cares about: bad input, missing prerequisites, and duplicates.
// Anything else is passed through unclassified.

// ValidationError indicates malformed or out-of-range input. The
// caller should fix the request, retrying as-is is pointless.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
} // func (e *ValidationError) Error() string

// NotFoundError indicates a referenced user or alarm does not exist.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.What)
} // func (e *NotFoundError) Error() string

// ConflictError indicates a record for the same (user, alarm slot,
// day) already exists. The existing record wins, it is never
// overwritten.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string {
	return e.Msg
} // func (e *ConflictError) Error() string
