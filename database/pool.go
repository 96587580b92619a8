// /home/krylon/go/src/github.com/blicero/asclepius/database/pool.go
// -*- mode: go; coding: utf-8; -*-
// Created on 13. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-14 19:21:48 krylon>

package database

import (
	"container/list"
	"sync"

	"github.com/blicero/asclepius/common"
)

// Pool is a pool of database connections. Since SQLite is happy to
// have many connections to the same file, we open a handful up front
// and let the web handlers and the notification loop borrow them.
type Pool struct {
	lock sync.Mutex
	cond *sync.Cond
	pool *list.List
}

// NewPool opens a fresh database Pool with the given number of
// connections.
func NewPool(cnt int) (*Pool, error) {
	var (
		err  error
		pool = &Pool{
			pool: list.New(),
		}
	)

	pool.cond = sync.NewCond(&pool.lock)

	for i := 0; i < cnt; i++ {
		var db *Database

		if db, err = Open(common.DbPath); err != nil {
			return nil, err
		}

		pool.pool.PushBack(db)
	}

	return pool, nil
} // func NewPool(cnt int) (*Pool, error)

// IsEmpty returns true if the Pool currently has no idle connections.
func (pool *Pool) IsEmpty() bool {
	pool.lock.Lock()
	var empty = pool.pool.Len() == 0
	pool.lock.Unlock()
	return empty
} // func (pool *Pool) IsEmpty() bool

// Get returns a connection from the Pool. If the Pool is empty, it
// blocks until a connection is returned.
func (pool *Pool) Get() *Database {
	pool.lock.Lock()
	defer pool.lock.Unlock()

	for pool.pool.Len() == 0 {
		pool.cond.Wait()
	}

	var item = pool.pool.Front()
	pool.pool.Remove(item)

	return item.Value.(*Database)
} // func (pool *Pool) Get() *Database

// GetNoWait returns a connection from the Pool. If the Pool is empty,
// it opens a fresh connection instead of waiting.
func (pool *Pool) GetNoWait() (*Database, error) {
	pool.lock.Lock()

	if pool.pool.Len() > 0 {
		var item = pool.pool.Front()
		pool.pool.Remove(item)
		pool.lock.Unlock()
		return item.Value.(*Database), nil
	}

	pool.lock.Unlock()
	return Open(common.DbPath)
} // func (pool *Pool) GetNoWait() (*Database, error)

// Put returns a connection to the Pool.
func (pool *Pool) Put(db *Database) {
	pool.lock.Lock()
	pool.pool.PushBack(db)
	pool.cond.Signal()
	pool.lock.Unlock()
} // func (pool *Pool) Put(db *Database)

// Close closes all idle connections in the Pool.
func (pool *Pool) Close() error {
	pool.lock.Lock()
	defer pool.lock.Unlock()

	var err error

	for pool.pool.Len() > 0 {
		var item = pool.pool.Front()
		pool.pool.Remove(item)

		var db = item.Value.(*Database)
		if err = db.Close(); err != nil {
			return err
		}
	}

	return nil
} // func (pool *Pool) Close() error
