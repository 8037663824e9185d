package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"gxpgovern/internal/auditchain"
)

// Postgres persists the audit chain in append order using a monotonically
// increasing sequence column.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Migrate(ctx context.Context) error {
	const query = `
	CREATE TABLE IF NOT EXISTS audit_entries (
		seq        BIGSERIAL PRIMARY KEY,
		id         TEXT NOT NULL UNIQUE,
		ts         TIMESTAMPTZ NOT NULL,
		user_id    TEXT NOT NULL,
		user_name  TEXT NOT NULL,
		actor_role TEXT NOT NULL,
		origin     TEXT NOT NULL,
		action     TEXT NOT NULL,
		resource   TEXT NOT NULL,
		resource_id TEXT NOT NULL,
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		prev_hash  TEXT NOT NULL DEFAULT '',
		hash       TEXT NOT NULL,
		details    JSONB NOT NULL DEFAULT '{}'::jsonb
	)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("migrate audit_entries: %w", err)
	}
	return nil
}

func (s *Postgres) Append(ctx context.Context, entry auditchain.Entry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("encode audit details: %w", err)
	}
	const query = `
	INSERT INTO audit_entries (
		id, ts, user_id, user_name, actor_role, origin, action,
		resource, resource_id, ip_address, user_agent, prev_hash, hash, details
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = s.db.ExecContext(ctx, query,
		entry.ID, entry.Timestamp, entry.UserID, entry.UserName,
		entry.ActorRole, string(entry.Origin), entry.Action,
		entry.Resource, entry.ResourceID, entry.IPAddress, entry.UserAgent,
		entry.PrevHash, entry.Hash, details,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *Postgres) List(ctx context.Context) ([]auditchain.Entry, error) {
	const query = selectEntry + ` ORDER BY seq ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []auditchain.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

func (s *Postgres) Tail(ctx context.Context) (*auditchain.Entry, error) {
	const query = selectEntry + ` ORDER BY seq DESC LIMIT 1`
	entry, err := scanEntry(s.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

const selectEntry = `
	SELECT id, ts, user_id, user_name, actor_role, origin, action,
	       resource, resource_id, ip_address, user_agent, prev_hash, hash, details
	FROM audit_entries`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (auditchain.Entry, error) {
	var (
		entry   auditchain.Entry
		origin  string
		details []byte
	)
	err := row.Scan(
		&entry.ID, &entry.Timestamp, &entry.UserID, &entry.UserName,
		&entry.ActorRole, &origin, &entry.Action,
		&entry.Resource, &entry.ResourceID, &entry.IPAddress, &entry.UserAgent,
		&entry.PrevHash, &entry.Hash, &details,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auditchain.Entry{}, err
		}
		return auditchain.Entry{}, fmt.Errorf("scan audit entry: %w", err)
	}
	entry.Origin = auditchain.Origin(origin)
	if len(details) > 0 {
		if err := json.Unmarshal(details, &entry.Details); err != nil {
			return auditchain.Entry{}, fmt.Errorf("decode audit details: %w", err)
		}
	}
	return entry, nil
}
