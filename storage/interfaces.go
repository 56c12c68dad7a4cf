package storage

import "marketplace-analyzer/models"

// SnapshotWriter is the interface any export backend must satisfy.
type SnapshotWriter interface {
	Write(rows []models.ScoredListing) error
	Close() error
}
