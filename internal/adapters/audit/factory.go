package audit

import (
	"fmt"
	"io"

	"github.com/guardrail-labs/sentinel/internal/core"
)

// Store pairs the audit port with lifecycle management.
type Store interface {
	core.AuditStore
	io.Closer
}

// New creates an audit store for the configured backend.
func New(backend, path string) (Store, error) {
	switch backend {
	case "sqlite":
		return NewSQLiteStore(path)
	case "jsonl":
		return NewJSONLStore(path)
	default:
		return nil, fmt.Errorf("unknown audit backend: %s", backend)
	}
}
