package sqlite

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		v    types.Value
		want any
	}{
		{"int32", types.Int32(-7), int64(-7)},
		{"uint32", types.Uint32(math.MaxUint32), int64(math.MaxUint32)},
		{"int64", types.Int64(math.MinInt64), int64(math.MinInt64)},
		{"uint64 keeps bits", types.Uint64(math.MaxUint64), int64(-1)},
		{"float32", types.Float32(0.5), float64(0.5)},
		{"float64", types.Float64(1e-9), float64(1e-9)},
		{"text", types.Text("hi"), "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encode(tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBindArgs(t *testing.T) {
	args, err := bindArgs([]types.Value{types.Int64(1), types.Text("a")})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), "a"}, args)

	_, err = bindArgs([]types.Value{types.Int64(1), {}, types.Text("a")})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrBindFailed)
	assert.Contains(t, err.Error(), "bind parameter 2")
}

func TestEncodeRejectsNaN(t *testing.T) {
	for _, v := range []types.Value{types.Float64(math.NaN()), types.Float32(float32(math.NaN()))} {
		_, err := encode(v)
		assert.ErrorIs(t, err, types.ErrBindFailed, v.Kind().String())
	}

	got, err := encode(types.Float64(math.Inf(-1)))
	require.NoError(t, err)
	assert.Equal(t, math.Inf(-1), got)
}

func TestColumnValue(t *testing.T) {
	tests := []struct {
		name    string
		kind    types.Kind
		src     any
		want    types.Value
		wantErr bool
	}{
		{"int32 max", types.KindInt32, int64(math.MaxInt32), types.Int32(math.MaxInt32), false},
		{"int32 over", types.KindInt32, int64(math.MaxInt32 + 1), types.Value{}, true},
		{"int32 under", types.KindInt32, int64(math.MinInt32 - 1), types.Value{}, true},
		{"uint32 max", types.KindUint32, int64(math.MaxUint32), types.Uint32(math.MaxUint32), false},
		{"uint32 negative", types.KindUint32, int64(-1), types.Value{}, true},
		{"uint64 from negative", types.KindUint64, int64(-1), types.Uint64(math.MaxUint64), false},
		{"int64", types.KindInt64, int64(12), types.Int64(12), false},
		{"int64 from whole real", types.KindInt64, float64(3), types.Int64(3), false},
		{"int64 from fractional real", types.KindInt64, 2.5, types.Value{}, true},
		{"int64 from real beyond range", types.KindInt64, 1e19, types.Value{}, true},
		{"int64 from numeric text", types.KindInt64, "12", types.Value{}, true},
		{"int32 from numeric text", types.KindInt32, "12", types.Value{}, true},
		{"int64 null", types.KindInt64, nil, types.Int64(0), false},
		{"float64 from integer", types.KindFloat64, int64(2), types.Float64(2), false},
		{"float64 from numeric text", types.KindFloat64, "1.5", types.Value{}, true},
		{"float64 large", types.KindFloat64, 1e39, types.Float64(1e39), false},
		{"float32", types.KindFloat32, 0.5, types.Float32(0.5), false},
		{"float32 max", types.KindFloat32, float64(math.MaxFloat32), types.Float32(math.MaxFloat32), false},
		{"float32 overflow", types.KindFloat32, 1e39, types.Value{}, true},
		{"float32 negative overflow", types.KindFloat32, -1e39, types.Value{}, true},
		{"float32 infinity", types.KindFloat32, math.Inf(1), types.Float32(float32(math.Inf(1))), false},
		{"float32 null", types.KindFloat32, nil, types.Float32(0), false},
		{"text", types.KindText, "hi", types.Text("hi"), false},
		{"text from integer", types.KindText, int64(42), types.Text("42"), false},
		{"text from real", types.KindText, 1.5, types.Text("1.5"), false},
		{"text null", types.KindText, nil, types.Text(""), false},
		{"text from bool", types.KindText, true, types.Value{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := column{kind: tt.kind}
			require.NoError(t, c.Scan(tt.src))
			got, err := c.value(0)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrDecodeFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := (&column{}).value(3)
	assert.ErrorIs(t, err, types.ErrDecodeFailed)
}

func TestColumnScanCopiesBytes(t *testing.T) {
	b := []byte("abc")
	c := column{kind: types.KindText}
	require.NoError(t, c.Scan(b))
	b[0] = 'x'

	got, err := c.value(0)
	require.NoError(t, err)
	assert.Equal(t, types.Text("abc"), got)
}

func TestNewDecoderDests(t *testing.T) {
	d := newDecoder(types.Shape{types.KindUint32, types.KindFloat32, types.KindText})
	require.Len(t, d.dests, 3)
	for i := range d.cols {
		assert.Same(t, &d.cols[i], d.dests[i])
	}
	assert.Equal(t, types.KindFloat32, d.cols[1].kind)
}

func TestLossyColumnsFailToDecode(t *testing.T) {
	st := openTestConn(t).NewStatement()

	tests := []struct {
		name  string
		query string
		kind  types.Kind
	}{
		{"real beyond float32", "SELECT 1e39", types.KindFloat32},
		{"numeric text into int64", "SELECT '12'", types.KindInt64},
		{"numeric text into float64", "SELECT '1.5'", types.KindFloat64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := st.ExecuteRows(tt.query, types.Shape{tt.kind})
			assert.ErrorIs(t, err, types.ErrDecodeFailed)
			assert.Nil(t, rows)
			assert.Equal(t, Idle, st.State())
		})
	}
}

func TestNaNIsNotBound(t *testing.T) {
	st := openTestConn(t).NewStatement()
	require.NoError(t, st.Exec("CREATE TABLE f (x real)"))

	err := st.Execute("INSERT INTO f VALUES (?)", types.Float64(math.NaN()))
	assert.ErrorIs(t, err, types.ErrBindFailed)
	assert.Equal(t, Idle, st.State())

	n, err := ExecuteScalar[int64](st, "SELECT COUNT(*) FROM f")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIsBindError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errors.New("sql: expected 2 arguments, got 3"), true},
		{fmt.Errorf("sql: converting argument $1 type: unsupported type"), true},
		{errors.New("database is locked"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isBindError(tt.err), tt.err.Error())
	}
}

func TestExecFailed(t *testing.T) {
	assert.NoError(t, execFailed("op", nil))

	plain := errors.New("boom")
	err := execFailed("op", plain)
	assert.ErrorIs(t, err, types.ErrEngineExecFailed)
	assert.ErrorIs(t, err, plain)

	step := &types.Error{Kind: types.StatementStepFailed, Code: 19}
	err = execFailed("op", step)
	assert.ErrorIs(t, err, &types.Error{Kind: types.EngineExecFailed, Code: 19})

	for _, kind := range []types.ErrorKind{types.MappingNotBound, types.BindFailed, types.DecodeFailed, types.EngineExecFailed} {
		in := &types.Error{Kind: kind}
		assert.Same(t, in, execFailed("op", in), kind.String())
	}
}
