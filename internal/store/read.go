package store

import (
	"context"
	"database/sql"
	"fmt"
)

type scanner interface {
	Scan(dest ...any) error
}

// ReadFunction retrieves a function by content id.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadFunction(ctx context.Context, id string) (FunctionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, params, listing, instr_count, ir_version
		FROM functions
		WHERE id = ?
	`, id)
	return scanFunction(row)
}

// ReadBuild retrieves a build by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadBuild(ctx context.Context, id string) (Build, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, module, module_hash, target, compiler_version, ir_version
		FROM builds
		WHERE id = ?
	`, id)
	return scanBuild(row)
}

// ListBuilds returns every build ordered by seq.
// Returns an empty slice (not nil) when no builds exist.
func (s *Store) ListBuilds(ctx context.Context) ([]Build, error) {
	return s.queryBuilds(ctx, nil)
}

// ListFunctions returns the functions of a build in module order.
// Returns an empty slice (not nil) if the build has no functions.
func (s *Store) ListFunctions(ctx context.Context, buildID string) ([]FunctionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.name, f.params, f.listing, f.instr_count, f.ir_version
		FROM build_functions bf
		JOIN functions f ON f.id = bf.function_id
		WHERE bf.build_id = ?
		ORDER BY bf.position ASC
	`, buildID)
	if err != nil {
		return nil, fmt.Errorf("query functions: %w", err)
	}
	defer rows.Close()

	records := []FunctionRecord{}
	for rows.Next() {
		rec, err := scanFunction(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate functions: %w", err)
	}
	return records, nil
}

// LatestByName returns the named function from the most recent build that
// contains it, along with that build.
// Returns sql.ErrNoRows if no build contains the name.
func (s *Store) LatestByName(ctx context.Context, name string) (FunctionRecord, Build, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT b.id
		FROM builds b
		JOIN build_functions bf ON bf.build_id = b.id
		JOIN functions f ON f.id = bf.function_id
		WHERE f.name = ?
		ORDER BY b.seq DESC
		LIMIT 1
	`, name)
	var buildID string
	if err := row.Scan(&buildID); err != nil {
		return FunctionRecord{}, Build{}, err
	}

	b, err := s.ReadBuild(ctx, buildID)
	if err != nil {
		return FunctionRecord{}, Build{}, err
	}

	row = s.db.QueryRowContext(ctx, `
		SELECT f.id, f.name, f.params, f.listing, f.instr_count, f.ir_version
		FROM build_functions bf
		JOIN functions f ON f.id = bf.function_id
		WHERE bf.build_id = ? AND f.name = ?
	`, buildID, name)
	rec, err := scanFunction(row)
	if err != nil {
		return FunctionRecord{}, Build{}, err
	}
	return rec, b, nil
}

func scanFunction(row scanner) (FunctionRecord, error) {
	var rec FunctionRecord
	var paramsJSON string
	err := row.Scan(&rec.ID, &rec.Name, &paramsJSON, &rec.Listing, &rec.InstrCount, &rec.IRVersion)
	if err == sql.ErrNoRows {
		return FunctionRecord{}, err
	}
	if err != nil {
		return FunctionRecord{}, fmt.Errorf("scan function: %w", err)
	}
	if rec.Params, err = unmarshalParams(paramsJSON); err != nil {
		return FunctionRecord{}, err
	}
	return rec, nil
}

func scanBuild(row scanner) (Build, error) {
	var b Build
	err := row.Scan(&b.ID, &b.Seq, &b.Module, &b.ModuleHash, &b.Target, &b.CompilerVersion, &b.IRVersion)
	if err == sql.ErrNoRows {
		return Build{}, err
	}
	if err != nil {
		return Build{}, fmt.Errorf("scan build: %w", err)
	}
	return b, nil
}
