package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/david/support-finder/internal/models"
)

// Store keeps normalized entity snapshots per domain so the server can
// serve datasets edited outside the binary.
type Store struct {
	db Querier
}

func NewStore(db Querier) *Store {
	return &Store{db: db}
}

// DomainSnapshot describes the last load of one domain.
type DomainSnapshot struct {
	Domain   string    `json:"domain"`
	Entities int       `json:"entities"`
	LoadedAt time.Time `json:"loaded_at"`
}

type Stats struct {
	Domains  int `json:"domains"`
	Entities int `json:"entities"`
}

// ReplaceDomain swaps the stored entities of domain for entities in one
// transaction. Input order is kept in the position column.
func (s *Store) ReplaceDomain(ctx context.Context, domain string, entities []models.Entity) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", domain, err)
	}

	fail := func(err error) error {
		_ = tx.Rollback(ctx)
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM entities WHERE domain = $1`, domain); err != nil {
		return fail(fmt.Errorf("clear %s: %w", domain, err))
	}

	for i, e := range entities {
		payload, err := json.Marshal(e)
		if err != nil {
			return fail(fmt.Errorf("encode %s/%s: %w", domain, e.ID, err))
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO entities (domain, id, position, payload)
			VALUES ($1, $2, $3, $4)
		`, domain, e.ID, i, payload); err != nil {
			return fail(fmt.Errorf("insert %s/%s: %w", domain, e.ID, err))
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO domain_snapshots (domain, entity_count, loaded_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (domain) DO UPDATE
		SET entity_count = EXCLUDED.entity_count, loaded_at = NOW()
	`, domain, len(entities)); err != nil {
		return fail(fmt.Errorf("record snapshot %s: %w", domain, err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace %s: %w", domain, err)
	}
	return nil
}

// Entities returns the stored entities of domain in their original order.
// An unknown domain yields an empty list.
func (s *Store) Entities(ctx context.Context, domain string) ([]models.Entity, error) {
	rows, err := s.db.Query(ctx, `
		SELECT payload
		FROM entities
		WHERE domain = $1
		ORDER BY position
	`, domain)
	if err != nil {
		return nil, fmt.Errorf("query entities %s: %w", domain, err)
	}
	defer rows.Close()

	entities := []models.Entity{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan entity %s: %w", domain, err)
		}
		var e models.Entity
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decode entity %s: %w", domain, err)
		}
		if e.SupportTypes == nil {
			e.SupportTypes = []string{}
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read entities %s: %w", domain, err)
	}
	return entities, nil
}

// Domains lists the stored snapshots ordered by domain.
func (s *Store) Domains(ctx context.Context) ([]DomainSnapshot, error) {
	rows, err := s.db.Query(ctx, `SELECT domain, entity_count, loaded_at FROM domain_snapshots ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []DomainSnapshot
	for rows.Next() {
		var d DomainSnapshot
		if err := rows.Scan(&d.Domain, &d.Entities, &d.LoadedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM domain_snapshots),
			(SELECT COUNT(*) FROM entities)
	`).Scan(&st.Domains, &st.Entities)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	return st, nil
}
