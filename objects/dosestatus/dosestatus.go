// /home/krylon/go/src/github.com/blicero/asclepius/objects/dosestatus/dosestatus.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-19 18:05:44 krylon>

// Package dosestatus contains symbolic constants to describe the
// outcome of a single scheduled dose.
package dosestatus

import "fmt"

// Status describes the outcome of one scheduled dose.
type Status uint8

// TakenOnTime means the dose was taken within the acceptable window.
// TakenLate means the dose was taken, but late.
// Missed means the dose was not taken at all.
const (
	TakenOnTime Status = iota
	TakenLate
	Missed
)

// The string forms below are also the wire and storage format, they
// must not change.
var names = map[Status]string{
	TakenOnTime: "taken_on_time",
	TakenLate:   "taken_late",
	Missed:      "missed",
}

func (s Status) String() string {
	if n, ok := names[s]; ok {
		return n
	}

	return fmt.Sprintf("InvalidStatus(%d)", s)
} // func (s Status) String() string

// Valid returns true if s is one of the defined Status values.
func (s Status) Valid() bool {
	_, ok := names[s]
	return ok
} // func (s Status) Valid() bool

// Taken returns true unless the dose was missed.
func (s Status) Taken() bool {
	return s != Missed
} // func (s Status) Taken() bool

// Parse turns the string form of a Status back into the Status itself.
func Parse(s string) (Status, error) {
	for st, n := range names {
		if n == s {
			return st, nil
		}
	}

	return 0, fmt.Errorf("Invalid status %q (must be taken_on_time, taken_late, or missed)",
		s)
} // func Parse(s string) (Status, error)

// MarshalJSON implements the json.Marshaler interface.
func (s Status) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("Invalid status %d", s)
	}

	return []byte(`"` + s.String() + `"`), nil
} // func (s Status) MarshalJSON() ([]byte, error)

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *Status) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("Invalid status literal %s", data)
	}

	var (
		err error
		st  Status
	)

	if st, err = Parse(string(data[1 : len(data)-1])); err != nil {
		return err
	}

	*s = st
	return nil
} // func (s *Status) UnmarshalJSON(data []byte) error
