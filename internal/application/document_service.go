package application

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"accounthub/internal/domain/entity"
	"accounthub/internal/domain/repository"
)

// DocumentService owns uploads and owner-scoped listing/search.
type DocumentService struct {
	Repo    repository.DocumentRepository
	Blobs   BlobStore
	Logger  *logrus.Logger
	ES      *elasticsearch.Client // nil disables search indexing
	ESIndex string
}

func NewDocumentService(repo repository.DocumentRepository, blobs BlobStore, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *DocumentService {
	return &DocumentService{Repo: repo, Blobs: blobs, Logger: logger, ES: es, ESIndex: esIndex}
}

// Upload stores the payload in the blob store, then persists the document row
// owned by ownerID. Indexing into Elasticsearch is best-effort and never
// fails the upload.
func (s *DocumentService) Upload(ctx context.Context, ownerID, title, filename, contentType string, r io.Reader) (*entity.Document, error) {
	if s.Blobs == nil {
		return nil, ErrBlobsUnavailable
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := "user_docs/" + ownerID + "/" + uuid.NewString() + ext
	url, err := s.Blobs.Put(ctx, objectPath, contentType, r)
	if err != nil {
		return nil, err
	}

	d := &entity.Document{OwnerID: ownerID, FileURL: url, Title: title}
	if err := s.Repo.Create(ctx, d); err != nil {
		return nil, err
	}
	s.index(ctx, d)
	return d, nil
}

// ListByOwner returns the owner's documents newest first.
func (s *DocumentService) ListByOwner(ctx context.Context, ownerID string) ([]entity.Document, error) {
	return s.Repo.ListByOwner(ctx, ownerID)
}

func (s *DocumentService) index(ctx context.Context, d *entity.Document) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          d.ID,
		"owner_id":    d.OwnerID,
		"title":       d.Title,
		"uploaded_at": d.UploadedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: d.ID, Body: strings.NewReader(string(b)), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("document_id", d.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("document_id", d.ID).Warn("es index response error")
	}
}

// Search queries the owner's documents by title. Results are always filtered
// by owner; no cross-user hit can surface.
func (s *DocumentService) Search(ctx context.Context, ownerID, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"match": map[string]any{"title": q},
				},
				"filter": map[string]any{
					"term": map[string]any{"owner_id": ownerID},
				},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
