package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
)

// nodeStore implements driven.NodeStore.
type nodeStore struct {
	store *Store
}

var _ driven.NodeStore = (*nodeStore)(nil)

const nodeColumns = `id, source, source_id, parent_id, type, kind, schema_uid,
	content, children, digest, created_at, updated_at, touched_at`

// CreateNode inserts a node or replaces the stored copy, keeping created_at.
func (s *nodeStore) CreateNode(ctx context.Context, node *domain.Node) error {
	if node == nil || node.ID == "" {
		return domain.ErrInvalidInput
	}

	content, err := json.Marshal(nonNilContent(node.Content))
	if err != nil {
		return fmt.Errorf("encoding content of node %s: %w", node.ID, err)
	}
	children := node.Children
	if children == nil {
		children = []string{}
	}
	childJSON, err := json.Marshal(children)
	if err != nil {
		return fmt.Errorf("encoding children of node %s: %w", node.ID, err)
	}

	now := formatTime(s.store.now())
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO nodes (`+nodeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			source_id = excluded.source_id,
			parent_id = excluded.parent_id,
			type = excluded.type,
			kind = excluded.kind,
			schema_uid = excluded.schema_uid,
			content = excluded.content,
			children = excluded.children,
			digest = excluded.digest,
			updated_at = excluded.updated_at,
			touched_at = excluded.touched_at
	`, node.ID, node.Source, node.SourceID, nullString(node.ParentID), node.Type,
		string(node.Kind), nullString(node.SchemaUID), string(content), string(childJSON),
		nullString(node.Digest), now, now, now)
	if err != nil {
		return fmt.Errorf("saving node %s: %w", node.ID, err)
	}
	return nil
}

// DeleteNode removes a node and every node it transitively owns.
func (s *nodeStore) DeleteNode(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, `
		WITH RECURSIVE owned(id) AS (
			SELECT id FROM nodes WHERE id = ?
			UNION
			SELECT n.id FROM nodes n JOIN owned o ON n.parent_id = o.id
		)
		DELETE FROM nodes WHERE id IN (SELECT id FROM owned)
	`, id)
	if err != nil {
		return fmt.Errorf("deleting node %s: %w", id, err)
	}
	return nil
}

// TouchNode marks a node as still valid.
func (s *nodeStore) TouchNode(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx,
		"UPDATE nodes SET touched_at = ? WHERE id = ?", formatTime(s.store.now()), id)
	if err != nil {
		return fmt.Errorf("touching node %s: %w", id, err)
	}
	return nil
}

// GetNode retrieves a node by id.
func (s *nodeStore) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT "+nodeColumns+" FROM nodes WHERE id = ?", id)
	return scanNode(row)
}

// ListNodes returns nodes matching the filter ordered by type then id.
func (s *nodeStore) ListNodes(ctx context.Context, filter domain.NodeFilter) ([]*domain.Node, error) {
	var (
		where []string
		args  []any
	)
	if filter.Source != "" {
		where = append(where, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, filter.Type)
	}
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(filter.Kind))
	}

	query := "SELECT " + nodeColumns + " FROM nodes"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY type, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*domain.Node //nolint:prealloc // size unknown from query
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nodes: %w", err)
	}
	return nodes, nil
}

// CountByType returns node counts per type for a source.
func (s *nodeStore) CountByType(ctx context.Context, source string) ([]domain.TypeCount, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT type, COUNT(*) FROM nodes
		WHERE source = ?
		GROUP BY type
		ORDER BY type
	`, source)
	if err != nil {
		return nil, fmt.Errorf("counting nodes: %w", err)
	}
	defer rows.Close()

	var counts []domain.TypeCount
	for rows.Next() {
		var c domain.TypeCount
		if err := rows.Scan(&c.Type, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counts: %w", err)
	}
	return counts, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*domain.Node, error) {
	var (
		n                               domain.Node
		kind, content, children         string
		parentID, schemaUID, digest     sql.NullString
		createdAt, updatedAt, touchedAt string
	)
	err := row.Scan(&n.ID, &n.Source, &n.SourceID, &parentID, &n.Type, &kind, &schemaUID,
		&content, &children, &digest, &createdAt, &updatedAt, &touchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning node: %w", err)
	}

	n.Kind = domain.NodeKind(kind)
	n.ParentID = parentID.String
	n.SchemaUID = schemaUID.String
	n.Digest = digest.String
	n.CreatedAt = parseTime(createdAt)
	n.UpdatedAt = parseTime(updatedAt)
	n.TouchedAt = parseTime(touchedAt)

	if err := json.Unmarshal([]byte(content), &n.Content); err != nil {
		return nil, fmt.Errorf("decoding content of node %s: %w", n.ID, err)
	}
	if err := json.Unmarshal([]byte(children), &n.Children); err != nil {
		return nil, fmt.Errorf("decoding children of node %s: %w", n.ID, err)
	}
	if len(n.Children) == 0 {
		n.Children = nil
	}
	return &n, nil
}

func nonNilContent(c map[string]any) map[string]any {
	if c == nil {
		return map[string]any{}
	}
	return c
}
