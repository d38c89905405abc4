package backup

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/stockroom-pos/stockroom/internal/shared"
)

// RepositoryPort abstracts whole-database export and import.
type RepositoryPort interface {
	ExportAll(ctx context.Context) (Document, error)
	ImportAll(ctx context.Context, doc Document) error
}

// Service serializes backups to JSON and restores them.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService constructs Service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Export produces a pretty-printed JSON backup of every collection.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	doc, err := s.repo.ExportAll(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Import replaces the database contents with the given backup. Unknown
// top-level keys in the payload are ignored; absent collections simply load
// as empty.
func (s *Service) Import(ctx context.Context, payload []byte) error {
	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return shared.ErrInvalidDataFormat
	}
	if err := s.repo.ImportAll(ctx, doc); err != nil {
		return err
	}
	s.logger.Info("backup imported",
		"users", len(doc.Users),
		"products", len(doc.Products),
		"transactions", len(doc.Transactions))
	return nil
}
