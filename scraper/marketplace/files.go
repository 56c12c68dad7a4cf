package marketplace

import (
	"context"
	"fmt"
	"os"

	"marketplace-analyzer/models"
	"marketplace-analyzer/services"
	"marketplace-analyzer/utils"
)

// FileExtractor reads listings from search result pages saved to disk. It
// has no detail view.
type FileExtractor struct {
	paths   []string
	cleaner *services.Cleaner
	logger  *utils.Logger
}

// NewFileExtractor creates a FileExtractor over the given HTML files.
func NewFileExtractor(paths []string, cleaner *services.Cleaner, logger *utils.Logger) *FileExtractor {
	return &FileExtractor{paths: paths, cleaner: cleaner, logger: logger}
}

// ExtractVisible parses every file in order. Records from all files are
// returned together.
func (f *FileExtractor) ExtractVisible(ctx context.Context, keyword string) ([]models.ListingRecord, error) {
	var out []models.ListingRecord
	for _, path := range f.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := f.extractFile(path, keyword)
		if err != nil {
			return nil, err
		}
		f.logger.Info("[files] %s: %d listings", path, len(records))
		out = append(out, records...)
	}
	return out, nil
}

func (f *FileExtractor) extractFile(path, keyword string) ([]models.ListingRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("marketplace: open %s: %w", path, err)
	}
	defer file.Close()

	cards, err := ParseCollection(file)
	if err != nil {
		return nil, fmt.Errorf("marketplace: %s: %w", path, err)
	}
	return f.cleaner.Clean(cards, keyword), nil
}

// ExtractSingle always reports ErrUnavailable.
func (f *FileExtractor) ExtractSingle(context.Context) (models.SingleListingAttributes, error) {
	return models.SingleListingAttributes{}, models.ErrUnavailable
}
