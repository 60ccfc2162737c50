package customfield

import (
	"context"

	"github.com/ignite/enquiry-crm/internal/domain"
)

// Repository defines the data access contract for custom field definitions.
type Repository interface {
	List(ctx context.Context) ([]domain.CustomField, error)

	// Insert stores a new field. Returns ErrFieldExists if the key is taken.
	Insert(ctx context.Context, f domain.CustomField) error

	// Delete removes a field. Returns ErrNotFound if it doesn't exist.
	Delete(ctx context.Context, key string) error
}
