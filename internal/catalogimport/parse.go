package catalogimport

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var header = []string{"category", "name", "price", "stock"}

// ErrMalformedRow reports a line that cannot be turned into a Row.
var ErrMalformedRow = errors.New("malformed catalog row")

// Parse reads catalog rows from r, transparently decompressing gzip input.
// Blank lines are skipped. Parsing stops at the first malformed line.
func Parse(ctx context.Context, r io.Reader) ([]Row, error) {
	br := bufio.NewReader(r)

	var src io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = len(header)
	cr.TrimLeadingSpace = true

	var rows []Row
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedRow, err)
		}

		line, _ := cr.FieldPos(0)
		if len(rows) == 0 && isHeader(record) {
			continue
		}

		row, err := parseRecord(line, record)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func isHeader(record []string) bool {
	for i, col := range header {
		if !strings.EqualFold(strings.TrimSpace(record[i]), col) {
			return false
		}
	}
	return true
}

func parseRecord(line int, record []string) (Row, error) {
	row := Row{
		Line:     line,
		Category: strings.TrimSpace(record[0]),
		Name:     strings.TrimSpace(record[1]),
	}

	if row.Category == "" || row.Name == "" {
		return Row{}, fmt.Errorf("%w: line %d: category and name are required", ErrMalformedRow, line)
	}

	price, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil {
		return Row{}, fmt.Errorf("%w: line %d: invalid price %q", ErrMalformedRow, line, record[2])
	}
	if price.IsNegative() {
		return Row{}, fmt.Errorf("%w: line %d: price cannot be negative", ErrMalformedRow, line)
	}
	row.Price = price.Round(2).InexactFloat64()

	stock, err := strconv.Atoi(strings.TrimSpace(record[3]))
	if err != nil {
		return Row{}, fmt.Errorf("%w: line %d: invalid stock %q", ErrMalformedRow, line, record[3])
	}
	if stock < 0 {
		return Row{}, fmt.Errorf("%w: line %d: stock cannot be negative", ErrMalformedRow, line)
	}
	row.Stock = stock

	return row, nil
}
