// Package catalogimport loads a product catalog from a CSV file on disk or
// in S3 and writes it through the catalog service.
//
// The file has one product per line: category,name,price,stock. A header
// line with those column names is optional. Files may be gzip-compressed.
package catalogimport

import (
	"context"
)

// Row is one product line of a catalog file.
type Row struct {
	Line     int
	Category string
	Name     string
	Price    float64
	Stock    int
}

// Loader reads and parses a catalog file.
type Loader interface {
	// Load reads the catalog file at path and returns its rows in file order.
	Load(ctx context.Context, path string) ([]Row, error)
}
