package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gxpgovern/internal/draft/models"
	id "gxpgovern/pkg/domain"
	"gxpgovern/pkg/platform/sentinel"
)

// Postgres is the production draft store. It relies on database/sql so the
// pgx stdlib driver can be swapped without touching queries.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const draftSchema = `
CREATE TABLE IF NOT EXISTS draft_content (
	id TEXT PRIMARY KEY,
	module_id TEXT NOT NULL,
	change_type TEXT NOT NULL,
	content TEXT NOT NULL,
	rationale TEXT NOT NULL,
	trigger_authority TEXT NOT NULL,
	trigger_document TEXT NOT NULL,
	trigger_section TEXT NOT NULL,
	trigger_effective_date TIMESTAMPTZ,
	trigger_url TEXT NOT NULL,
	status TEXT NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL,
	reviewed_by TEXT,
	reviewed_at TIMESTAMPTZ,
	comments JSONB NOT NULL DEFAULT '[]',
	sources JSONB NOT NULL DEFAULT '[]',
	agentic_authorized BOOLEAN NOT NULL DEFAULT FALSE
)`

// Migrate creates the backing table when absent.
func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, draftSchema)
	return err
}

func (s *Postgres) Save(ctx context.Context, draft models.DraftContent) error {
	comments, sources, err := encodeJSONFields(draft)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO draft_content (
			id, module_id, change_type, content, rationale,
			trigger_authority, trigger_document, trigger_section,
			trigger_effective_date, trigger_url,
			status, generated_at, reviewed_by, reviewed_at,
			comments, sources, agentic_authorized
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		draft.ID.String(), draft.ModuleID, string(draft.ChangeType), draft.Content, draft.Rationale,
		string(draft.RegulatoryTrigger.Authority), draft.RegulatoryTrigger.Document, draft.RegulatoryTrigger.Section,
		nullableTime(draft.RegulatoryTrigger.EffectiveDate), draft.RegulatoryTrigger.URL,
		string(draft.Status), draft.GeneratedAt, nullableString(draft.ReviewedBy), draft.ReviewedAt,
		comments, sources, draft.AgenticAuthorized,
	)
	if err != nil {
		return fmt.Errorf("insert draft: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, draft models.DraftContent) error {
	comments, sources, err := encodeJSONFields(draft)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE draft_content SET
			status = $2, reviewed_by = $3, reviewed_at = $4,
			comments = $5, sources = $6, agentic_authorized = $7,
			content = $8, rationale = $9
		WHERE id = $1`,
		draft.ID.String(), string(draft.Status), nullableString(draft.ReviewedBy), draft.ReviewedAt,
		comments, sources, draft.AgenticAuthorized, draft.Content, draft.Rationale,
	)
	if err != nil {
		return fmt.Errorf("update draft: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, draftID id.DraftID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM draft_content WHERE id = $1`, draftID.String())
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, draftID id.DraftID) (models.DraftContent, error) {
	row := s.db.QueryRowContext(ctx, selectDraft+` WHERE id = $1`, draftID.String())
	draft, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DraftContent{}, sentinel.ErrNotFound
	}
	return draft, err
}

func (s *Postgres) List(ctx context.Context) ([]models.DraftContent, error) {
	rows, err := s.db.QueryContext(ctx, selectDraft+` ORDER BY generated_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DraftContent
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, draft)
	}
	return out, rows.Err()
}

const selectDraft = `
	SELECT id, module_id, change_type, content, rationale,
		trigger_authority, trigger_document, trigger_section,
		trigger_effective_date, trigger_url,
		status, generated_at, reviewed_by, reviewed_at,
		comments, sources, agentic_authorized
	FROM draft_content`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (models.DraftContent, error) {
	var (
		d             models.DraftContent
		draftID       string
		changeType    string
		authority     string
		status        string
		effectiveDate sql.NullTime
		reviewedBy    sql.NullString
		reviewedAt    sql.NullTime
		comments      []byte
		sources       []byte
	)
	err := row.Scan(
		&draftID, &d.ModuleID, &changeType, &d.Content, &d.Rationale,
		&authority, &d.RegulatoryTrigger.Document, &d.RegulatoryTrigger.Section,
		&effectiveDate, &d.RegulatoryTrigger.URL,
		&status, &d.GeneratedAt, &reviewedBy, &reviewedAt,
		&comments, &sources, &d.AgenticAuthorized,
	)
	if err != nil {
		return models.DraftContent{}, err
	}
	d.ID = id.DraftID(draftID)
	d.ChangeType = models.ChangeType(changeType)
	d.RegulatoryTrigger.Authority = models.Authority(authority)
	d.Status = models.Status(status)
	if effectiveDate.Valid {
		d.RegulatoryTrigger.EffectiveDate = effectiveDate.Time
	}
	if reviewedBy.Valid {
		d.ReviewedBy = reviewedBy.String
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		d.ReviewedAt = &t
	}
	if err := json.Unmarshal(comments, &d.Comments); err != nil {
		return models.DraftContent{}, fmt.Errorf("decode comments: %w", err)
	}
	if err := json.Unmarshal(sources, &d.Sources); err != nil {
		return models.DraftContent{}, fmt.Errorf("decode sources: %w", err)
	}
	return d, nil
}

func encodeJSONFields(d models.DraftContent) ([]byte, []byte, error) {
	comments := d.Comments
	if comments == nil {
		comments = []string{}
	}
	sources := d.Sources
	if sources == nil {
		sources = []models.SourceLink{}
	}
	cb, err := json.Marshal(comments)
	if err != nil {
		return nil, nil, fmt.Errorf("encode comments: %w", err)
	}
	sb, err := json.Marshal(sources)
	if err != nil {
		return nil, nil, fmt.Errorf("encode sources: %w", err)
	}
	return cb, sb, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
