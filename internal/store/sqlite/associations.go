package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/listenupapp/tagengine/internal/domain"
	"github.com/listenupapp/tagengine/internal/store"
)

// AddAssociation links a content item to a tag. Linking twice is a no-op.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) AddAssociation(ctx context.Context, table domain.AssociationTable, contentID, tagID string) error {
	name, err := tableName(table)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO `+name+` (content_id, tag_id, created_at) VALUES (?, ?, ?)`,
		contentID, tagID, formatTime(time.Now()))
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return store.ErrNotFound.WithMessage(fmt.Sprintf("tag %s not found", tagID))
		}
		return fmt.Errorf("insert %s: %w", name, err)
	}
	return nil
}

// FindAssociationsByTag returns the content ids linked to tagID, oldest first.
func (s *Store) FindAssociationsByTag(ctx context.Context, table domain.AssociationTable, tagID string) ([]string, error) {
	name, err := tableName(table)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT content_id FROM `+name+` WHERE tag_id = ? ORDER BY created_at ASC, content_id ASC`, tagID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	contentIDs := []string{}
	for rows.Next() {
		var contentID string
		if err := rows.Scan(&contentID); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		contentIDs = append(contentIDs, contentID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return contentIDs, nil
}

// FindAssociationsByTags returns content ids per tag for many tags at once.
// Tags without links are absent from the map.
func (s *Store) FindAssociationsByTags(ctx context.Context, table domain.AssociationTable, tagIDs []string) (map[string][]string, error) {
	name, err := tableName(table)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string)
	for _, chunk := range chunks(tagIDs) {
		placeholders, args := inClause(chunk)
		query := fmt.Sprintf(
			`SELECT tag_id, content_id FROM %s WHERE tag_id IN (%s) ORDER BY created_at ASC, content_id ASC`,
			name, placeholders)

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", name, err)
		}
		for rows.Next() {
			var tagID, contentID string
			if err := rows.Scan(&tagID, &contentID); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan %s: %w", name, err)
			}
			out[tagID] = append(out[tagID], contentID)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("rows iteration: %w", err)
		}
	}
	return out, nil
}

// TransferAssociations re-points the given content links from one tag to
// another in a single transaction. A link the target already holds is not
// duplicated: the source row is dropped instead and counted as deduplicated.
func (s *Store) TransferAssociations(ctx context.Context, table domain.AssociationTable, contentIDs []string, fromTagID, toTagID string) (store.TransferResult, error) {
	var result store.TransferResult

	name, err := tableName(table)
	if err != nil {
		return result, err
	}
	if len(contentIDs) == 0 || fromTagID == toTagID {
		return result, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, chunk := range chunks(contentIDs) {
		placeholders, args := inClause(chunk)

		res, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE OR IGNORE %s SET tag_id = ? WHERE tag_id = ? AND content_id IN (%s)`, name, placeholders),
			append([]any{toTagID, fromTagID}, args...)...)
		if err != nil {
			return store.TransferResult{}, fmt.Errorf("transfer %s: %w", name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return store.TransferResult{}, fmt.Errorf("rows affected: %w", err)
		}
		result.Transferred += int(n)

		// Rows left on the source were ignored because the target already
		// links that content item.
		res, err = tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE tag_id = ? AND content_id IN (%s)`, name, placeholders),
			append([]any{fromTagID}, args...)...)
		if err != nil {
			return store.TransferResult{}, fmt.Errorf("dedupe %s: %w", name, err)
		}
		n, err = res.RowsAffected()
		if err != nil {
			return store.TransferResult{}, fmt.Errorf("rows affected: %w", err)
		}
		result.Deduplicated += int(n)
	}

	if err := tx.Commit(); err != nil {
		return store.TransferResult{}, fmt.Errorf("commit: %w", err)
	}
	return result, nil
}

// DeleteAssociations removes the given content links for tagID and returns
// how many rows were deleted.
func (s *Store) DeleteAssociations(ctx context.Context, table domain.AssociationTable, contentIDs []string, tagID string) (int, error) {
	name, err := tableName(table)
	if err != nil {
		return 0, err
	}
	if len(contentIDs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	deleted := 0
	for _, chunk := range chunks(contentIDs) {
		placeholders, args := inClause(chunk)
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE tag_id = ? AND content_id IN (%s)`, name, placeholders),
			append([]any{tagID}, args...)...)
		if err != nil {
			return 0, fmt.Errorf("delete %s: %w", name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		deleted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return deleted, nil
}
