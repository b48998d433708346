package sqlite

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// encode converts v into the argument bound at one parameter position.
// Integer kinds travel as int64 (uint64 keeps its bit pattern), floating
// kinds as float64 and text as string. NaN is rejected.
func encode(v types.Value) (any, error) {
	switch v.Kind() {
	case types.KindInt32, types.KindInt64:
		return v.Int64(), nil
	case types.KindUint32:
		return int64(v.Uint32()), nil
	case types.KindUint64:
		return int64(v.Uint64()), nil
	case types.KindFloat32, types.KindFloat64:
		f := v.Float64()
		if math.IsNaN(f) {
			// The engine stores NaN as NULL.
			return nil, &types.Error{Kind: types.BindFailed, ValueKind: v.Kind(), Message: "cannot bind NaN"}
		}
		return f, nil
	case types.KindText:
		return v.Text(), nil
	}
	return nil, &types.Error{Kind: types.BindFailed, ValueKind: v.Kind(), Message: "cannot bind value"}
}

// bindArgs encodes params in order; params[i] binds to placeholder i+1.
func bindArgs(params []types.Value) ([]any, error) {
	args := make([]any, len(params))
	for i, p := range params {
		a, err := encode(p)
		if err != nil {
			return nil, &types.Error{
				Kind:      types.BindFailed,
				ValueKind: p.Kind(),
				Message:   fmt.Sprintf("bind parameter %d", i+1),
				Err:       err,
			}
		}
		args[i] = a
	}
	return args, nil
}

// column is the scan destination for one result column of a known kind.
// It keeps the raw driver value; value converts it without loss or fails.
// NULL decodes to the zero value of the kind.
type column struct {
	kind types.Kind
	src  any
}

// Scan implements sql.Scanner.
func (c *column) Scan(src any) error {
	if b, ok := src.([]byte); ok {
		src = string(b)
	}
	c.src = src
	return nil
}

func (c *column) value(pos int) (types.Value, error) {
	switch {
	case c.kind.IsInteger():
		n, err := c.integer(pos)
		if err != nil {
			return types.Value{}, err
		}
		return c.fromInteger(pos, n)
	case c.kind.IsFloat():
		return c.float(pos)
	case c.kind == types.KindText:
		return c.text(pos)
	}
	return types.Value{}, &types.Error{
		Kind:      types.DecodeFailed,
		ValueKind: c.kind,
		Message:   fmt.Sprintf("column %d: cannot decode into kind", pos),
	}
}

// integer accepts INTEGER values and REAL values with no fractional part.
func (c *column) integer(pos int) (int64, error) {
	switch v := c.src.(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case float64:
		if v == math.Trunc(v) && v >= -(1<<63) && v < 1<<63 {
			return int64(v), nil
		}
	}
	return 0, c.typeError(pos)
}

func (c *column) fromInteger(pos int, n int64) (types.Value, error) {
	switch c.kind {
	case types.KindInt32:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return types.Value{}, c.rangeError(pos, n)
		}
		return types.Int32(int32(n)), nil
	case types.KindUint32:
		if n < 0 || n > math.MaxUint32 {
			return types.Value{}, c.rangeError(pos, n)
		}
		return types.Uint32(uint32(n)), nil
	case types.KindUint64:
		return types.Uint64(uint64(n)), nil
	}
	return types.Int64(n), nil
}

func (c *column) float(pos int) (types.Value, error) {
	var f float64
	switch v := c.src.(type) {
	case nil:
	case float64:
		f = v
	case int64:
		f = float64(v)
	default:
		return types.Value{}, c.typeError(pos)
	}
	if c.kind == types.KindFloat64 {
		return types.Float64(f), nil
	}
	if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
		return types.Value{}, &types.Error{
			Kind:      types.DecodeFailed,
			ValueKind: c.kind,
			Message:   fmt.Sprintf("column %d: value %g out of range", pos, f),
		}
	}
	return types.Float32(float32(f)), nil
}

func (c *column) text(pos int) (types.Value, error) {
	switch v := c.src.(type) {
	case nil:
		return types.Text(""), nil
	case string:
		return types.Text(v), nil
	case int64:
		return types.Text(strconv.FormatInt(v, 10)), nil
	case float64:
		return types.Text(strconv.FormatFloat(v, 'g', -1, 64)), nil
	}
	return types.Value{}, c.typeError(pos)
}

func (c *column) typeError(pos int) error {
	return &types.Error{
		Kind:      types.DecodeFailed,
		ValueKind: c.kind,
		Message:   fmt.Sprintf("column %d: cannot decode %T", pos, c.src),
	}
}

func (c *column) rangeError(pos int, n int64) error {
	return &types.Error{
		Kind:      types.DecodeFailed,
		ValueKind: c.kind,
		Message:   fmt.Sprintf("column %d: value %d out of range", pos, n),
	}
}

// decoder scans rows of a fixed shape.
type decoder struct {
	cols  []column
	dests []any
}

func newDecoder(shape types.Shape) *decoder {
	d := &decoder{cols: make([]column, len(shape)), dests: make([]any, len(shape))}
	for i, k := range shape {
		d.cols[i].kind = k
		d.dests[i] = &d.cols[i]
	}
	return d
}

func shapeOf(fields []types.Field) types.Shape {
	shape := make(types.Shape, len(fields))
	for i, f := range fields {
		shape[i] = f.Kind()
	}
	return shape
}

// check verifies the result has exactly one column per shape entry.
func (d *decoder) check(rows *sql.Rows) error {
	names, err := rows.Columns()
	if err != nil {
		return &types.Error{Kind: types.DecodeFailed, Message: "read result columns", Err: err}
	}
	if len(names) != len(d.cols) {
		return &types.Error{
			Kind:    types.DecodeFailed,
			Message: fmt.Sprintf("result has %d columns, shape has %d", len(names), len(d.cols)),
		}
	}
	return nil
}

// scan decodes the current row into Values, column i into the kind at
// shape position i.
func (d *decoder) scan(rows *sql.Rows) (types.Row, error) {
	for i := range d.cols {
		d.cols[i].src = nil
	}
	if err := rows.Scan(d.dests...); err != nil {
		return nil, &types.Error{Kind: types.DecodeFailed, Message: "scan row", Err: err}
	}
	row := make(types.Row, len(d.cols))
	for i := range d.cols {
		v, err := d.cols[i].value(i)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

// scanInto decodes the current row straight into fields.
func (d *decoder) scanInto(rows *sql.Rows, fields []types.Field) error {
	row, err := d.scan(rows)
	if err != nil {
		return err
	}
	for i, f := range fields {
		if err := f.Store(row[i]); err != nil {
			return err
		}
	}
	return nil
}
