package backend

import (
	"context"

	"lessons/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the repository instance and optional cleanup function
type Result struct {
	Repository store.Repository
	Cleanup    CleanupFunc
}

// Factory creates persistence backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type Type

	// XML specific
	XMLPath string

	// SQLite specific
	SQLiteDBPath string
}

// Type represents the persistence backend type
type Type string

const (
	XMLBackend    Type = "xml"
	SQLiteBackend Type = "sqlite"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case XMLBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
