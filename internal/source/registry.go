//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package source

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Opener creates a Source from a driver-specific connection string.
type Opener func(ctx context.Context, conn string) (Source, error)

var (
	registry = make(map[string]Opener)
	mu       sync.RWMutex
)

// Register makes a source backend available under driver. Backends call it
// from their init functions.
func Register(driver string, open Opener) {
	mu.Lock()
	defer mu.Unlock()
	registry[driver] = open
}

// Open connects to the backend registered under driver.
func Open(ctx context.Context, driver, conn string) (Source, error) {
	mu.RLock()
	open, ok := registry[driver]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown source driver %q (available: %v)", driver, Drivers())
	}
	return open(ctx, conn)
}

// Drivers returns the registered driver names in sorted order.
func Drivers() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
