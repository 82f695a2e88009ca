// Package storage persists group memories between runs.
package storage

import (
	"context"
	"fmt"
)

// Histories is the persisted shape: group id -> message -> weight.
type Histories = map[int64]map[string]int

// Backend loads and saves the whole memory at once.
type Backend interface {
	// Load returns the last saved memory. A backend that was never written returns an
	// empty map.
	Load(ctx context.Context) (Histories, error)
	// Save replaces the stored memory with h.
	Save(ctx context.Context, h Histories) error
	Close() error
}

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Open returns the backend named by driver, rooted at path.
func Open(driver, path string) (Backend, error) {
	switch driver {
	case DriverJSON, "":
		return NewJSON(DefaultJSONConfig(path))
	case DriverSQLite:
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
