package sqlite

import (
	"database/sql"
	"log/slog"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// query prepares sqlText, binds params, and steps the result while each
// returns true. Rows are closed and the statement finalized before query
// returns.
func (s *Statement) query(sqlText string, params []types.Value, d *decoder, each func(*sql.Rows) (bool, error)) (err error) {
	if err := s.prepare(sqlText); err != nil {
		return err
	}
	defer s.finalize(&err)

	args, err := bindArgs(params)
	if err != nil {
		return err
	}

	rows, err := s.stmt.QueryContext(ctx(), args...)
	if err != nil {
		s.logger.Debug("query failed", slog.String("sql", sqlText), slog.Any("error", err))
		return stepError("query", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = newError(types.StatementStepFailed, "close rows", cerr)
		}
	}()

	if err := d.check(rows); err != nil {
		return err
	}
	for rows.Next() {
		more, err := each(rows)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return newError(types.StatementStepFailed, "step", err)
	}
	return nil
}

// ExecuteRows runs a query and decodes every result row into shape. The
// rows are collected eagerly in engine order; the statement is finalized
// before they are returned.
func (s *Statement) ExecuteRows(sqlText string, shape types.Shape, params ...types.Value) ([]types.Row, error) {
	d := newDecoder(shape)
	var out []types.Row
	err := s.query(sqlText, params, d, func(rows *sql.Rows) (bool, error) {
		row, err := d.scan(rows)
		if err != nil {
			return false, err
		}
		out = append(out, row)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CollectRows runs a query and decodes each result row into a new R through
// the fields bind returns for it. bind must return the same field kinds for
// every R, one per result column.
func CollectRows[R any](s *Statement, sqlText string, bind func(*R) []types.Field, params ...types.Value) ([]R, error) {
	var sample R
	d := newDecoder(shapeOf(bind(&sample)))

	var out []R
	err := s.query(sqlText, params, d, func(rows *sql.Rows) (bool, error) {
		var r R
		if err := d.scanInto(rows, bind(&r)); err != nil {
			return false, err
		}
		out = append(out, r)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ScalarValue runs a single-column query and decodes the first row as kind.
// A query with no rows fails with ScalarNotFound.
func (s *Statement) ScalarValue(sqlText string, kind types.Kind, params ...types.Value) (types.Value, error) {
	d := newDecoder(types.Shape{kind})
	var (
		v     types.Value
		found bool
	)
	err := s.query(sqlText, params, d, func(rows *sql.Rows) (bool, error) {
		row, err := d.scan(rows)
		if err != nil {
			return false, err
		}
		v, found = row[0], true
		return false, nil
	})
	if err != nil {
		return types.Value{}, err
	}
	if !found {
		return types.Value{}, &types.Error{Kind: types.ScalarNotFound, ValueKind: kind, Message: "scalar query returned no rows"}
	}
	return v, nil
}

// ExecuteScalar runs a single-column query and returns the first row's
// value as T. A query with no rows fails with ScalarNotFound; no default
// value is returned.
func ExecuteScalar[T types.Scalar](s *Statement, sqlText string, params ...types.Value) (T, error) {
	var out T
	f := types.Ref("scalar", &out)
	v, err := s.ScalarValue(sqlText, f.Kind(), params...)
	if err != nil {
		return out, err
	}
	if err := f.Store(v); err != nil {
		return out, err
	}
	return out, nil
}
