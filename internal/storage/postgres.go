package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"schoolscraper/internal/domain"
)

// ErrNotFound is returned when a lookup matches no archived school.
var ErrNotFound = errors.New("school not found")

// PostgresStore archives finished datasets in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

// ArchiveRecords upserts a dataset snapshot keyed by URL within a single
// transaction. Populated phone/website values in the archive are kept when
// the incoming row has none, matching the merge rule used during enrichment.
func (s *PostgresStore) ArchiveRecords(ctx context.Context, recs []domain.Record) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, r := range recs {
		batch.Queue(
			`INSERT INTO schools (url, name, district, address, grades, phone, website, page_number, scraped_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
			 ON CONFLICT (url) DO UPDATE SET
			   name = EXCLUDED.name,
			   district = EXCLUDED.district,
			   address = EXCLUDED.address,
			   grades = EXCLUDED.grades,
			   phone = CASE WHEN EXCLUDED.phone <> '' THEN EXCLUDED.phone ELSE schools.phone END,
			   website = CASE WHEN EXCLUDED.website <> '' THEN EXCLUDED.website ELSE schools.website END,
			   page_number = EXCLUDED.page_number,
			   scraped_at = NOW()`,
			r.URL, r.Name, r.District, r.Address, r.Grades, r.Phone, r.Website, r.PageNumber,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetSchool retrieves one archived school by its listing URL.
func (s *PostgresStore) GetSchool(ctx context.Context, url string) (*domain.Record, error) {
	var r domain.Record
	err := s.db.QueryRow(ctx,
		`SELECT url, name, district, address, grades, phone, website, page_number
		 FROM schools WHERE url = $1`,
		url,
	).Scan(&r.URL, &r.Name, &r.District, &r.Address, &r.Grades, &r.Phone, &r.Website, &r.PageNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
