package supplier

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// Record is a persisted supplier, keyed by contact phone.
type Record struct {
	ID           int64          `db:"id" json:"id"`
	CompanyName  string         `db:"company_name" json:"company_name"`
	ContactPhone string         `db:"contact_phone" json:"contact_phone"`
	ContactName  string         `db:"contact_name" json:"contact_name"`
	Tags         pq.StringArray `db:"tags" json:"tags"`
	QuoteCount   int            `db:"quote_count" json:"quote_count"`
}

// Store sediments supplier contacts seen in quotes so later sessions can
// look them up by name or company. A nil *Store is valid and inert, so
// callers do not have to branch on whether persistence is configured.
type Store struct {
	db  *sqlx.DB
	log zerolog.Logger
}

func NewStore(db *sqlx.DB, logger zerolog.Logger) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db, log: logger}
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS suppliers (
    id            BIGSERIAL PRIMARY KEY,
    company_name  TEXT NOT NULL,
    contact_phone TEXT NOT NULL UNIQUE,
    contact_name  TEXT NOT NULL DEFAULT '',
    tags          TEXT[] NOT NULL DEFAULT '{}',
    quote_count   INT NOT NULL DEFAULT 0,
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func (s *Store) EnsureSchema(ctx context.Context) error {
	if s == nil {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("create suppliers table: %w", err)
	}
	return nil
}

// Upsert records one sighting of a supplier: new phones insert, known
// phones bump quote_count and merge tags.
func (s *Store) Upsert(ctx context.Context, info *Info) error {
	if s == nil || info == nil {
		return nil
	}
	const q = `
INSERT INTO suppliers (company_name, contact_phone, contact_name, tags, quote_count)
VALUES ($1, $2, $3, $4, 1)
ON CONFLICT (contact_phone) DO UPDATE SET
    company_name = CASE WHEN EXCLUDED.company_name <> '未知公司'
                        THEN EXCLUDED.company_name ELSE suppliers.company_name END,
    contact_name = CASE WHEN EXCLUDED.contact_name <> ''
                        THEN EXCLUDED.contact_name ELSE suppliers.contact_name END,
    tags         = (SELECT ARRAY(SELECT DISTINCT unnest(suppliers.tags || EXCLUDED.tags))),
    quote_count  = suppliers.quote_count + 1,
    updated_at   = now()`
	if _, err := s.db.ExecContext(ctx, q, info.CompanyName, info.ContactPhone, info.ContactName, pq.StringArray(info.Tags)); err != nil {
		return fmt.Errorf("upsert supplier %s: %w", info.ContactPhone, err)
	}
	s.log.Debug().Str("phone", info.ContactPhone).Str("company", info.CompanyName).Msg("supplier sedimented")
	return nil
}

// Search matches contact name, company name or tags, best-known first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + strings.TrimSpace(query) + "%"
	const q = `
SELECT id, company_name, contact_phone, contact_name, tags, quote_count
FROM suppliers
WHERE contact_name ILIKE $1 OR company_name ILIKE $1
   OR EXISTS (SELECT 1 FROM unnest(tags) t WHERE t ILIKE $1)
ORDER BY quote_count DESC, id
LIMIT $2`
	out := []Record{}
	if err := s.db.SelectContext(ctx, &out, q, pattern, limit); err != nil {
		return nil, fmt.Errorf("search suppliers %q: %w", query, err)
	}
	return out, nil
}

func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	const q = `
SELECT id, company_name, contact_phone, contact_name, tags, quote_count
FROM suppliers
ORDER BY quote_count DESC, id
LIMIT $1`
	out := []Record{}
	if err := s.db.SelectContext(ctx, &out, q, limit); err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return out, nil
}

// LookupCell returns the best match rendered as a supplier cell string,
// "" when nothing matches.
func (s *Store) LookupCell(ctx context.Context, query string) string {
	recs, err := s.Search(ctx, query, 1)
	if err != nil {
		if s != nil {
			s.log.Error().Err(err).Str("query", query).Msg("supplier lookup failed")
		}
		return ""
	}
	if len(recs) == 0 {
		return ""
	}
	r := recs[0]
	info := Info{CompanyName: r.CompanyName, ContactName: r.ContactName, ContactPhone: r.ContactPhone}
	return info.Cell()
}
