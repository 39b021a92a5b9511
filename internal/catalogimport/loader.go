package catalogimport

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for catalog files on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based catalog loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "catalog-loader").Logger(),
	}
}

// Load reads a plain or gzipped catalog file.
func (l *fileLoader) Load(ctx context.Context, path string) ([]Row, error) {
	l.logger.Info().Str("file", path).Msg("loading catalog file")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open catalog file")
		return nil, fmt.Errorf("failed to open catalog file %s: %w", path, err)
	}
	defer file.Close()

	rows, err := Parse(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to parse catalog file")
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("rows_loaded", len(rows)).
		Msg("catalog file loaded successfully")

	return rows, nil
}
