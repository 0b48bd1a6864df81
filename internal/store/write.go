package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jward/quarry/internal/entity"
	"github.com/jward/quarry/internal/resolve"
)

// WriteGraph persists a finished graph in a single transaction. Entity
// trees are flattened depth-first; member order is preserved through
// the ordinal column. Any prior run in the database is replaced.
func (s *Store) WriteGraph(entities []*entity.Entity, diags []resolve.Diagnostic) error {
	if err := s.Reset(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertEntity, err := tx.Prepare(`
		INSERT INTO entities
		  (fqn, parent_id, ordinal, title, description, kind, member_kind,
		   language, module, start_offset, end_offset, repository, refers_to, meta)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare entity insert: %w", err)
	}
	defer insertEntity.Close()

	counts := map[string]moduleInfo{}
	for i, root := range entities {
		module := root.Source.File
		n, err := writeEntity(insertEntity, root, nil, i, module)
		if err != nil {
			return err
		}
		info := counts[module]
		info.language = root.Language
		info.entities += n
		counts[module] = info
	}

	now := time.Now()
	for path, info := range counts {
		if _, err := tx.Exec(
			"INSERT INTO modules (path, language, entity_count, extracted_at) VALUES (?, ?, ?, ?)",
			path, info.language, info.entities, now,
		); err != nil {
			return fmt.Errorf("insert module %s: %w", path, err)
		}
	}

	for _, d := range diags {
		if _, err := tx.Exec(
			"INSERT INTO diagnostics (severity, code, module, name, detail) VALUES (?, ?, ?, ?, ?)",
			d.Severity.String(), d.Code, d.Module, d.Name, d.Detail,
		); err != nil {
			return fmt.Errorf("insert diagnostic: %w", err)
		}
	}

	return tx.Commit()
}

type moduleInfo struct {
	language string
	entities int
}

// writeEntity inserts e and recursively its members, returning the
// number of rows written for the subtree.
func writeEntity(stmt *sql.Stmt, e *entity.Entity, parentID *int64, ordinal int, module string) (int, error) {
	var meta any
	if len(e.Meta) > 0 {
		raw, err := json.Marshal(e.Meta)
		if err != nil {
			return 0, fmt.Errorf("marshal meta for %s: %w", e.FQN, err)
		}
		meta = string(raw)
	}

	res, err := stmt.Exec(
		e.FQN, parentID, ordinal,
		nullable(e.Title), nullable(e.Description),
		e.Kind, nullable(e.MemberKind),
		e.Language, module,
		e.Source.StartOffsetBytes, e.Source.EndOffsetBytes,
		nullable(e.Source.Repository), nullable(e.RefersTo),
		meta,
	)
	if err != nil {
		return 0, fmt.Errorf("insert entity %s: %w", e.FQN, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("entity id for %s: %w", e.FQN, err)
	}

	n := 1
	for i, m := range e.Members {
		written, err := writeEntity(stmt, m, &id, i, module)
		if err != nil {
			return 0, err
		}
		n += written
	}
	return n, nil
}

// nullable maps "" to NULL so empty optionals stay out of the row.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
