package repository

import (
	"context"

	"accounthub/internal/domain/entity"
)

// DocumentRepository defines document-related database operations.
// Listing is always scoped to a single owner; there is no cross-user query.
type DocumentRepository interface {
	Create(ctx context.Context, d *entity.Document) error
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Document, error)
}
