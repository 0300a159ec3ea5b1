package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"schoolscraper/internal/domain"
)

// csvHeader is the column layout shared by every dataset file the tool reads
// and writes.
var csvHeader = []string{"name", "url", "district", "address", "grades", "phone", "website", "page_number"}

// SaveCSV writes recs to path, overwriting any existing file.
func SaveCSV(path string, recs []domain.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, r := range recs {
		row := []string{
			r.Name,
			r.URL,
			r.District,
			r.Address,
			r.Grades,
			r.Phone,
			r.Website,
			strconv.Itoa(r.PageNumber),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadCSV reads a dataset previously written by SaveCSV. The header row must
// match the expected layout so a foreign or truncated file fails loudly.
func LoadCSV(path string) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read %s: empty file", path)
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	recs := make([]domain.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		page := 0
		if row[7] != "" {
			page, err = strconv.Atoi(row[7])
			if err != nil {
				return nil, fmt.Errorf("read %s: row %d: bad page_number %q", path, i+2, row[7])
			}
		}
		recs = append(recs, domain.Record{
			Name:       row[0],
			URL:        row[1],
			District:   row[2],
			Address:    row[3],
			Grades:     row[4],
			Phone:      row[5],
			Website:    row[6],
			PageNumber: page,
		})
	}
	return recs, nil
}

func checkHeader(got []string) error {
	if len(got) != len(csvHeader) {
		return fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(got))
	}
	for i, name := range csvHeader {
		if got[i] != name {
			return fmt.Errorf("expected column %q at position %d, got %q", name, i, got[i])
		}
	}
	return nil
}

// CheckpointPath returns the name of the intermediate dataset written during
// enrichment, placed alongside the input file.
func CheckpointPath(input string) string {
	dir, base := filepath.Split(input)
	return filepath.Join(dir, "intermediate_"+base)
}

// EnrichedPath returns the name of the final enriched dataset, placed
// alongside the input file.
func EnrichedPath(input string) string {
	dir, base := filepath.Split(input)
	return filepath.Join(dir, "enriched_"+base)
}

// CSVSink adapts the CSV helpers to the enricher's flush hook.
type CSVSink struct{}

func (CSVSink) Save(path string, recs []domain.Record) error {
	return SaveCSV(path, recs)
}
