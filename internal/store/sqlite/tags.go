package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/listenupapp/tagengine/internal/domain"
	"github.com/listenupapp/tagengine/internal/normalize"
	"github.com/listenupapp/tagengine/internal/store"
)

const tagColumns = `id, scope, name, category, color, created_at, updated_at`

// scanTag scans a sql.Row or sql.Rows into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag

	var (
		category  string
		color     string
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&t.ID,
		&t.Scope,
		&t.Name,
		&category,
		&color,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Category = domain.Category(category)
	t.Color = domain.Color(color)

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func checkTag(t *domain.Tag) error {
	if !t.Category.Valid() {
		return store.ErrInvalidInput.WithMessage(fmt.Sprintf("tag %s: invalid category %q", t.ID, t.Category))
	}
	if t.NameKey() == "" {
		return store.ErrInvalidInput.WithMessage(fmt.Sprintf("tag %s: empty name", t.ID))
	}
	return nil
}

// FindByName looks a tag up by trimmed, case-insensitive name within a scope.
// Returns store.ErrNotFound if no tag matches.
func (s *Store) FindByName(ctx context.Context, scope, name string) (*domain.Tag, error) {
	key := normalize.Name(name)
	if key == "" {
		return nil, store.ErrNotFound
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE scope = ? AND name_key = ?`, scope, key)

	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTag retrieves a tag by its ID.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTag(ctx context.Context, id string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = ?`, id)

	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// InsertTag inserts a new tag.
// Returns store.ErrAlreadyExists when the scope already holds the name.
func (s *Store) InsertTag(ctx context.Context, t *domain.Tag) error {
	if err := checkTag(t); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, scope, name, name_key, category, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.Scope,
		t.Name,
		t.NameKey(),
		string(t.Category),
		string(t.Color),
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithCause(err)
		}
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

// UpdateTag writes name, category, color, and updated_at for an existing tag.
// Returns store.ErrNotFound if the tag is gone and store.ErrAlreadyExists if
// the new name collides with another tag in the scope.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	if err := checkTag(t); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE tags
		SET name = ?, name_key = ?, category = ?, color = ?, updated_at = ?
		WHERE id = ?`,
		t.Name,
		t.NameKey(),
		string(t.Category),
		string(t.Color),
		formatTime(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithCause(err)
		}
		return fmt.Errorf("update tag: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteTag removes a tag. Its association rows go with it (ON DELETE CASCADE).
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListByScope returns every tag in the scope ordered by name.
func (s *Store) ListByScope(ctx context.Context, scope string) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE scope = ? ORDER BY name_key ASC, id ASC`, scope)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tags, nil
}
