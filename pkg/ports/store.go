package ports

import (
	"context"

	"github.com/yannickbattail/scadwrap/pkg/domain"
)

// ResultStore persists the outcome of operations so they can be listed and
// fetched later (e.g. by the HTTP API).
type ResultStore interface {
	// Save persists the record under rec.ID, replacing any previous one.
	Save(ctx context.Context, rec *domain.Record) error

	// Load retrieves a record.
	// Returns domain.ErrResultNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.Record, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored records, newest first.
	List(ctx context.Context) ([]string, error)
}
