// Package introspect contains a main introspecter interface which lets you
// snapshot the annotation-relevant metadata of a live database. It returns
// the same extract.Report shape the design-time extraction produces, so a
// live database can be diffed against a model definition.
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"pganno/internal/dialect"
	"pganno/internal/extract"
)

type Introspecter interface {
	Introspect(ctx context.Context, db *sql.DB) (*extract.Report, error)
}

var (
	registry = make(map[dialect.Type]func() Introspecter)
	mu       sync.RWMutex
)

func Register(d dialect.Type, fn func() Introspecter) {
	mu.Lock()
	defer mu.Unlock()
	registry[d] = fn
}

func NewIntrospecter(d dialect.Type) (Introspecter, error) {
	mu.RLock()
	fn, ok := registry[d]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported dialect %v", d)
	}

	return fn(), nil
}
