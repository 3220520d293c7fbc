package store

import (
	"context"
	"fmt"
	"strings"
)

// Predicate is a condition on build rows.
//
// This is a sealed interface: only types in this package implement it, so
// compilePredicate can switch over every case.
type Predicate interface {
	predicateNode()
}

// Equals matches builds whose column equals Value.
type Equals struct {
	Column string // one of the builds columns
	Value  any
}

// HasFunction matches builds that contain a function with the given name.
type HasFunction struct {
	Name string
}

// And matches builds satisfying every predicate. Empty means always true.
type And struct {
	Predicates []Predicate
}

func (Equals) predicateNode()      {}
func (HasFunction) predicateNode() {}
func (And) predicateNode()         {}

// buildColumns are the columns Equals may reference.
var buildColumns = map[string]bool{
	"id":               true,
	"seq":              true,
	"module":           true,
	"module_hash":      true,
	"target":           true,
	"compiler_version": true,
	"ir_version":       true,
}

// BuildFilter selects builds by field. Empty fields match everything.
type BuildFilter struct {
	Module          string `json:"module,omitempty"`
	Target          string `json:"target,omitempty"`
	CompilerVersion string `json:"compiler_version,omitempty"`
	Function        string `json:"function,omitempty"` // build contains this function
}

// Predicate converts the filter to a conjunction of its set fields.
func (f BuildFilter) Predicate() Predicate {
	var preds []Predicate
	if f.Module != "" {
		preds = append(preds, Equals{Column: "module", Value: f.Module})
	}
	if f.Target != "" {
		preds = append(preds, Equals{Column: "target", Value: f.Target})
	}
	if f.CompilerVersion != "" {
		preds = append(preds, Equals{Column: "compiler_version", Value: f.CompilerVersion})
	}
	if f.Function != "" {
		preds = append(preds, HasFunction{Name: f.Function})
	}
	return And{Predicates: preds}
}

// compileBuildQuery renders a build query with p as its WHERE clause.
// Values are always bound as parameters and rows always come back in seq
// order.
func compileBuildQuery(p Predicate) (string, []any, error) {
	where, params, err := compilePredicate(p)
	if err != nil {
		return "", nil, err
	}
	query := `SELECT id, seq, module, module_hash, target, compiler_version, ir_version FROM builds`
	if where != "" {
		query += " WHERE " + where
	}
	return query + " ORDER BY seq ASC", params, nil
}

// compilePredicate returns "" for a predicate that is always true.
func compilePredicate(p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "", nil, nil
	case Equals:
		if !buildColumns[pred.Column] {
			return "", nil, fmt.Errorf("unknown build column %q", pred.Column)
		}
		return pred.Column + " = ?", []any{pred.Value}, nil
	case HasFunction:
		return `EXISTS (
			SELECT 1 FROM build_functions bf
			JOIN functions f ON f.id = bf.function_id
			WHERE bf.build_id = builds.id AND f.name = ?)`, []any{pred.Name}, nil
	case And:
		var parts []string
		var params []any
		for _, sub := range pred.Predicates {
			sql, subParams, err := compilePredicate(sub)
			if err != nil {
				return "", nil, err
			}
			if sql == "" {
				continue
			}
			parts = append(parts, sql)
			params = append(params, subParams...)
		}
		return strings.Join(parts, " AND "), params, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// FindBuilds returns the builds matching f ordered by seq.
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) FindBuilds(ctx context.Context, f BuildFilter) ([]Build, error) {
	return s.queryBuilds(ctx, f.Predicate())
}

func (s *Store) queryBuilds(ctx context.Context, p Predicate) ([]Build, error) {
	query, params, err := compileBuildQuery(p)
	if err != nil {
		return nil, fmt.Errorf("compile build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	builds := []Build{}
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return builds, nil
}
