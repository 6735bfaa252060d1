package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"wikitextifier/pkg/db"
	"wikitextifier/pkg/model"
)

// SQLiteStore implements LabelStore over pkg/db.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(d *db.DB) *SQLiteStore {
	return &SQLiteStore{db: d}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetLabel(ctx context.Context, key model.LabelKey) (model.LabelEntry, bool) {
	row := s.db.QueryRowContext(ctx,
		`SELECT label, description, language_served, resolved_at
		 FROM labels WHERE id = ? AND lang = ?`, string(key.ID), key.Lang)

	entry, err := scanEntry(row)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("Label store read failed, treating as miss", "id", key.ID, "lang", key.Lang, "error", err)
		}
		return model.LabelEntry{}, false
	}
	return entry, true
}

func (s *SQLiteStore) GetLabelsBatch(ctx context.Context, keys []model.LabelKey) (map[model.LabelKey]model.LabelEntry, error) {
	results := make(map[model.LabelKey]model.LabelEntry)
	if len(keys) == 0 {
		return results, nil
	}

	// Group by language so each query is a simple IN over IDs.
	byLang := make(map[string][]model.EntityID)
	for _, k := range keys {
		byLang[k.Lang] = append(byLang[k.Lang], k.ID)
	}

	for lang, ids := range byLang {
		query := `SELECT id, label, description, language_served, resolved_at
				  FROM labels WHERE lang = ? AND id IN (` +
			strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",") + ")"

		args := make([]any, 0, len(ids)+1)
		args = append(args, lang)
		for _, id := range ids {
			args = append(args, string(id))
		}

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}

		for rows.Next() {
			var id string
			var label, description, served sql.NullString
			var entry model.LabelEntry
			if err := rows.Scan(&id, &label, &description, &served, &entry.ResolvedAt); err != nil {
				rows.Close()
				return nil, err
			}
			entry.Label = label.String
			entry.Description = description.String
			entry.LanguageServed = served.String
			results[model.LabelKey{ID: model.EntityID(id), Lang: lang}] = entry
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return results, nil
}

func (s *SQLiteStore) PutLabel(ctx context.Context, key model.LabelKey, entry model.LabelEntry) error {
	query := `INSERT INTO labels (id, lang, label, description, language_served, resolved_at)
			  VALUES (?, ?, ?, ?, ?, ?)
			  ON CONFLICT(id, lang) DO UPDATE SET
			  label=excluded.label,
			  description=excluded.description,
			  language_served=excluded.language_served,
			  resolved_at=excluded.resolved_at`

	_, err := s.db.ExecContext(ctx, query,
		string(key.ID), key.Lang, entry.Label, entry.Description, entry.LanguageServed, entry.ResolvedAt.UTC())
	return err
}

func (s *SQLiteStore) PutLabelsBatch(ctx context.Context, entries map[model.LabelKey]model.LabelEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO labels (id, lang, label, description, language_served, resolved_at)
			  VALUES (?, ?, ?, ?, ?, ?)
			  ON CONFLICT(id, lang) DO UPDATE SET
			  label=excluded.label,
			  description=excluded.description,
			  language_served=excluded.language_served,
			  resolved_at=excluded.resolved_at`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for key, entry := range entries {
		if _, err := stmt.ExecContext(ctx,
			string(key.ID), key.Lang, entry.Label, entry.Description, entry.LanguageServed, entry.ResolvedAt.UTC()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func scanEntry(row *sql.Row) (model.LabelEntry, error) {
	var label, description, served sql.NullString
	var entry model.LabelEntry
	if err := row.Scan(&label, &description, &served, &entry.ResolvedAt); err != nil {
		return model.LabelEntry{}, err
	}
	entry.Label = label.String
	entry.Description = description.String
	entry.LanguageServed = served.String
	return entry, nil
}
