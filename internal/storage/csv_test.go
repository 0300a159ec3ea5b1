package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"schoolscraper/internal/domain"
)

func TestSaveLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schools.csv")

	recs := []domain.Record{
		{
			Name:       "Austin High School",
			URL:        "https://txschools.gov/schools/227901001/overview",
			District:   "AUSTIN ISD",
			Address:    "1715 W CESAR CHAVEZ ST, AUSTIN, TX 78703",
			Grades:     "9-12",
			Phone:      "(512) 555-0100",
			PageNumber: 1,
		},
		{
			Name:       "Travis Elementary",
			URL:        "https://txschools.gov/schools/227901102/overview",
			District:   "AUSTIN ISD",
			Grades:     "PK-5",
			PageNumber: 2,
		},
	}

	require.NoError(t, SaveCSV(path, recs))

	got, err := LoadCSV(path)
	require.NoError(t, err)
	require.Equal(t, recs, got)
}

func TestSaveCSVEmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, SaveCSV(path, nil))

	got, err := LoadCSV(path)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestLoadCSVRejectsForeignFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "foreign.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\n1,2,3\n"), 0o644))
	_, err := LoadCSV(path)
	require.Error(t, err)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte(""), 0o644))
	_, err = LoadCSV(empty)
	require.Error(t, err)

	badPage := filepath.Join(dir, "badpage.csv")
	require.NoError(t, os.WriteFile(badPage,
		[]byte("name,url,district,address,grades,phone,website,page_number\nA,u,d,a,g,p,w,twelve\n"), 0o644))
	_, err = LoadCSV(badPage)
	require.Error(t, err)
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestDerivedPaths(t *testing.T) {
	require.Equal(t, "intermediate_schools.csv", CheckpointPath("schools.csv"))
	require.Equal(t, "enriched_schools.csv", EnrichedPath("schools.csv"))

	require.Equal(t, filepath.Join("out", "intermediate_schools.csv"), CheckpointPath(filepath.Join("out", "schools.csv")))
	require.Equal(t, filepath.Join("out", "enriched_schools.csv"), EnrichedPath(filepath.Join("out", "schools.csv")))
}
