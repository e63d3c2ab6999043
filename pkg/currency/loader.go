package currency

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// metaColumns is the header LoadMetaCSV expects: code,name,symbol,decimals[,active].
const metaColumns = 4

// LoadMetaCSV parses currency metadata rows. Rows with active=false are skipped;
// short rows are ignored.
func LoadMetaCSV(r io.Reader) ([]Meta, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("empty currency file")
	}
	if len(records[0]) < metaColumns {
		return nil, fmt.Errorf("invalid CSV format: expected at least %d columns, got %d", metaColumns, len(records[0]))
	}

	var metas []Meta
	for i, rec := range records[1:] {
		if len(rec) < metaColumns {
			continue
		}
		if len(rec) > metaColumns && strings.EqualFold(strings.TrimSpace(rec[metaColumns]), "false") {
			continue
		}
		decimals, err := strconv.ParseInt(strings.TrimSpace(rec[3]), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid decimals %q", i+2, rec[3])
		}
		metas = append(metas, Meta{
			Code:     Code(strings.ToUpper(strings.TrimSpace(rec[0]))),
			Name:     strings.TrimSpace(rec[1]),
			Symbol:   strings.TrimSpace(rec[2]),
			Decimals: int32(decimals),
		})
	}
	return metas, nil
}

// LoadFile registers every active currency listed in the CSV file at path.
func (r *Registry) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	metas, err := LoadMetaCSV(f)
	if err != nil {
		return 0, err
	}
	for _, m := range metas {
		if err := r.Register(m); err != nil {
			return 0, err
		}
	}
	return len(metas), nil
}
