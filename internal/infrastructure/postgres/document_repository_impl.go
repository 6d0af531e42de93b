package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"accounthub/internal/domain/entity"
	"accounthub/internal/domain/repository"
)

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

func (r *DocumentRepository) Create(ctx context.Context, d *entity.Document) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO documents (owner_id, file_url, title)
		VALUES ($1, $2, $3)
		RETURNING id, uploaded_at
	`, d.OwnerID, d.FileURL, d.Title)

	return row.Scan(&d.ID, &d.UploadedAt)
}

// ListByOwner returns the owner's documents, most recent upload first.
func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, file_url, title, uploaded_at
		FROM documents
		WHERE owner_id = $1
		ORDER BY uploaded_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Document, error) {
		var d entity.Document
		err := row.Scan(&d.ID, &d.OwnerID, &d.FileURL, &d.Title, &d.UploadedAt)
		return d, err
	})
}

var _ repository.DocumentRepository = (*DocumentRepository)(nil)
