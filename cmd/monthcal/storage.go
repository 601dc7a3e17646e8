package main

import (
	"fmt"

	"monthcal/internal/config"
	"monthcal/internal/store"
	"monthcal/internal/store/sqlite"
)

// openBackend builds the persistence medium named by the storage config.
// The returned close func is always non-nil.
func openBackend(sc config.StorageConfig) (store.Backend, func() error, error) {
	noop := func() error { return nil }

	switch sc.Driver {
	case config.DriverMemory:
		return store.NewMemoryBackend(), noop, nil
	case config.DriverSQLite:
		b, err := sqlite.Open(sc.Path)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite %s: %w", sc.Path, err)
		}
		return b, b.Close, nil
	case config.DriverFile, "":
		return store.NewFileBackend(sc.Path), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", sc.Driver)
	}
}
