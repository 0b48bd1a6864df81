package store

import (
	"database/sql"
	"fmt"
)

// EntityRow is one persisted entity as stored, with tree structure
// expressed through ParentID and Ordinal.
type EntityRow struct {
	ID          int64
	FQN         string
	ParentID    *int64
	Ordinal     int
	Title       string
	Description string
	Kind        string
	MemberKind  string
	Language    string
	Module      string
	StartOffset int
	EndOffset   int
	Repository  string
	RefersTo    string
	Meta        string
}

const entityColumns = `id, fqn, parent_id, ordinal,
	COALESCE(title, ''), COALESCE(description, ''), kind, COALESCE(member_kind, ''),
	language, module, start_offset, end_offset,
	COALESCE(repository, ''), COALESCE(refers_to, ''), COALESCE(meta, '')`

func scanEntity(row interface{ Scan(...any) error }) (*EntityRow, error) {
	var e EntityRow
	err := row.Scan(
		&e.ID, &e.FQN, &e.ParentID, &e.Ordinal,
		&e.Title, &e.Description, &e.Kind, &e.MemberKind,
		&e.Language, &e.Module, &e.StartOffset, &e.EndOffset,
		&e.Repository, &e.RefersTo, &e.Meta,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// EntityByFQN returns the entity with the given FQN, or nil.
func (s *Store) EntityByFQN(fqn string) (*EntityRow, error) {
	row := s.db.QueryRow("SELECT "+entityColumns+" FROM entities WHERE fqn = ?", fqn)
	e, err := scanEntity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("entity by fqn: %w", err)
	}
	return e, nil
}

// EntitiesReferring returns all entities whose refers_to points at the
// given FQN, in insertion order.
func (s *Store) EntitiesReferring(fqn string) ([]*EntityRow, error) {
	return s.queryEntities("SELECT "+entityColumns+" FROM entities WHERE refers_to = ? ORDER BY id", fqn)
}

// EntitiesInModule returns all entities of a module in insertion order,
// which is depth-first graph order.
func (s *Store) EntitiesInModule(module string) ([]*EntityRow, error) {
	return s.queryEntities("SELECT "+entityColumns+" FROM entities WHERE module = ? ORDER BY id", module)
}

// Members returns the direct members of an entity, ordered.
func (s *Store) Members(parentID int64) ([]*EntityRow, error) {
	return s.queryEntities("SELECT "+entityColumns+" FROM entities WHERE parent_id = ? ORDER BY ordinal", parentID)
}

func (s *Store) queryEntities(query string, args ...any) ([]*EntityRow, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	var out []*EntityRow
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// EntityCount returns the total number of persisted entities.
func (s *Store) EntityCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM entities").Scan(&n); err != nil {
		return 0, fmt.Errorf("count entities: %w", err)
	}
	return n, nil
}

// DiagnosticRow is one persisted diagnostic.
type DiagnosticRow struct {
	Severity string
	Code     string
	Module   string
	Name     string
	Detail   string
}

// Diagnostics returns all persisted diagnostics in insertion order.
func (s *Store) Diagnostics() ([]*DiagnosticRow, error) {
	rows, err := s.db.Query(`SELECT severity, code, COALESCE(module, ''), COALESCE(name, ''), COALESCE(detail, '')
		FROM diagnostics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query diagnostics: %w", err)
	}
	defer rows.Close()

	var out []*DiagnosticRow
	for rows.Next() {
		var d DiagnosticRow
		if err := rows.Scan(&d.Severity, &d.Code, &d.Module, &d.Name, &d.Detail); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}
