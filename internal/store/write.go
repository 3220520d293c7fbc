package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/synthgen/internal/ir"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// WriteFunction inserts a function record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: the id is a content hash,
// so a duplicate id is the same function. Returns whether a row was added.
func (s *Store) WriteFunction(ctx context.Context, rec FunctionRecord) (inserted bool, err error) {
	inserted, err = writeFunction(ctx, s.db, rec)
	if err != nil {
		return false, fmt.Errorf("write function: %w", err)
	}
	return inserted, nil
}

func writeFunction(ctx context.Context, db execer, rec FunctionRecord) (bool, error) {
	paramsJSON, err := marshalParams(rec.Params)
	if err != nil {
		return false, err
	}
	result, err := db.ExecContext(ctx, `
		INSERT INTO functions
		(id, name, params, listing, instr_count, ir_version)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Name,
		paramsJSON,
		rec.Listing,
		rec.InstrCount,
		rec.IRVersion,
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// WriteBuild records a compile run of m: one build row with the next seq,
// every function (deduplicated by content id) and the build's membership
// list in module order. Everything is written in one transaction.
func (s *Store) WriteBuild(ctx context.Context, m *ir.Module, target string) (Build, error) {
	moduleHash, err := ir.ModuleID(m)
	if err != nil {
		return Build{}, fmt.Errorf("write build: %w", err)
	}

	records := make([]FunctionRecord, len(m.Functions))
	for i, f := range m.Functions {
		if records[i], err = NewFunctionRecord(f); err != nil {
			return Build{}, fmt.Errorf("write build: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Build{}, fmt.Errorf("write build: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM builds`).Scan(&seq); err != nil {
		return Build{}, fmt.Errorf("write build: next seq: %w", err)
	}

	b := Build{
		ID:              s.ids.Generate(),
		Seq:             seq,
		Module:          m.Name,
		ModuleHash:      moduleHash,
		Target:          target,
		CompilerVersion: ir.CompilerVersion,
		IRVersion:       ir.IRVersion,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO builds
		(id, seq, module, module_hash, target, compiler_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID,
		b.Seq,
		b.Module,
		b.ModuleHash,
		b.Target,
		b.CompilerVersion,
		b.IRVersion,
	)
	if err != nil {
		return Build{}, fmt.Errorf("write build: %w", err)
	}

	for i, rec := range records {
		if _, err := writeFunction(ctx, tx, rec); err != nil {
			return Build{}, fmt.Errorf("write build: function %s: %w", rec.Name, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO build_functions (build_id, function_id, position)
			VALUES (?, ?, ?)
			ON CONFLICT DO NOTHING
		`, b.ID, rec.ID, i)
		if err != nil {
			return Build{}, fmt.Errorf("write build: link %s: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Build{}, fmt.Errorf("write build: commit: %w", err)
	}
	return b, nil
}
