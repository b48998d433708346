package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Query performs the generic persistence operations on any entity that
// exposes a types.Mapping. Every data value travels as a positional
// parameter; only table and column names appear in the SQL text.
type Query struct {
	conn   *Conn
	logger *slog.Logger
}

// NewQuery returns a Query bound to c. c must be open and must outlive the
// Query.
func NewQuery(c *Conn) (*Query, error) {
	if c == nil || !c.IsOpen() {
		return nil, &types.Error{Kind: types.ConnectionOpenFailed, Message: "query: connection is not open"}
	}
	return &Query{conn: c, logger: c.logger}, nil
}

func (q *Query) mapping(op string, e types.Mapper) (*types.Mapping, error) {
	var m *types.Mapping
	if e != nil {
		m = e.Mapping()
	}
	if !m.CheckBindings() {
		return nil, &types.Error{Kind: types.MappingNotBound, Message: op + ": table binding is not acceptable"}
	}
	return m, nil
}

// Save inserts the entity, binding every field in declaration order.
func (q *Query) Save(e types.Mapper) error {
	m, err := q.mapping("save", e)
	if err != nil {
		return err
	}
	q.logger.Debug("save", slog.String("table", m.Table()))
	st := q.conn.NewStatement()
	return execFailed("save", st.Execute(insertSQL(m), m.Values()...))
}

// Exists reports whether a row with the entity's primary key is stored.
func (q *Query) Exists(e types.Mapper) (bool, error) {
	m, err := q.mapping("exists", e)
	if err != nil {
		return false, err
	}
	st := q.conn.NewStatement()
	n, err := ExecuteScalar[int64](st, countSQL(m), m.PrimaryKey().Value())
	if err != nil {
		return false, execFailed("exists", err)
	}
	return n > 0, nil
}

// Fill loads the row with the entity's primary key into its fields. It
// returns false, leaving the fields untouched, when no such row exists.
func (q *Query) Fill(e types.Mapper) (bool, error) {
	m, err := q.mapping("fill", e)
	if err != nil {
		return false, err
	}
	q.logger.Debug("fill", slog.String("table", m.Table()))

	fields := m.Fields()
	d := newDecoder(shapeOf(fields))
	found := false
	st := q.conn.NewStatement()
	err = st.query(selectSQL(m), []types.Value{m.PrimaryKey().Value()}, d, func(rows *sql.Rows) (bool, error) {
		found = true
		return false, d.scanInto(rows, fields)
	})
	if err != nil {
		return false, execFailed("fill", err)
	}
	return found, nil
}

// Update writes the non-key fields of the row with the entity's primary key.
func (q *Query) Update(e types.Mapper) error {
	m, err := q.mapping("update", e)
	if err != nil {
		return err
	}
	q.logger.Debug("update", slog.String("table", m.Table()))
	params := append(types.ValuesOf(m.NonKeyFields()...), m.PrimaryKey().Value())
	st := q.conn.NewStatement()
	return execFailed("update", st.Execute(updateSQL(m), params...))
}

// SaveOrUpdate updates the entity's row when it exists and inserts it
// otherwise. Failures keep their kind and engine code and gain a
// "saveOrUpdate: " prefix.
func (q *Query) SaveOrUpdate(e types.Mapper) error {
	exists, err := q.Exists(e)
	if err == nil {
		if exists {
			err = q.Update(e)
		} else {
			err = q.Save(e)
		}
	}
	return types.Prefix("saveOrUpdate: ", err)
}

// Delete removes the row with the entity's primary key.
func (q *Query) Delete(e types.Mapper) error {
	m, err := q.mapping("deleteObject", e)
	if err != nil {
		return err
	}
	q.logger.Debug("delete", slog.String("table", m.Table()))
	st := q.conn.NewStatement()
	return execFailed("deleteObject", st.Execute(deleteSQL(m), m.PrimaryKey().Value()))
}

// SaveAll inserts every entity inside one IMMEDIATE transaction. The first
// failure rolls the whole batch back.
func (q *Query) SaveAll(es ...types.Mapper) error {
	st := q.conn.NewStatement()
	err := st.Transaction(types.TxImmediate, func() error {
		for _, e := range es {
			if err := q.Save(e); err != nil {
				return err
			}
		}
		return nil
	})
	return execFailed("saveAll", err)
}

// Load inserts rows into table inside one IMMEDIATE transaction. The values
// of each row bind to columns in order. The first failure rolls every row
// back.
func (q *Query) Load(table string, columns []string, rows []types.Row) error {
	if table == "" || len(columns) == 0 {
		return &types.Error{Kind: types.MappingNotBound, Message: "load: table binding is not acceptable"}
	}
	q.logger.Debug("load", slog.String("table", table), slog.Int("rows", len(rows)))

	query := insertInto(table, columns)
	st := q.conn.NewStatement()
	err := st.Transaction(types.TxImmediate, func() error {
		for i, r := range rows {
			if len(r) != len(columns) {
				return &types.Error{
					Kind:    types.BindFailed,
					Message: fmt.Sprintf("row %d: %d values for %d columns", i+1, len(r), len(columns)),
				}
			}
			if err := st.Execute(query, r...); err != nil {
				return err
			}
		}
		return nil
	})
	return execFailed("load", err)
}

// quoteIdent quotes a table or column name for use in SQL text.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteIdents(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = quoteIdent(n)
	}
	return out
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func pkClause(m *types.Mapping) string {
	return " WHERE " + quoteIdent(m.PrimaryKey().Name()) + " = ?"
}

func insertInto(table string, cols []string) string {
	return "INSERT INTO " + quoteIdent(table) +
		" (" + strings.Join(quoteIdents(cols), ", ") + ") VALUES (" + placeholders(len(cols)) + ")"
}

func insertSQL(m *types.Mapping) string {
	return insertInto(m.Table(), m.Columns())
}

func countSQL(m *types.Mapping) string {
	return "SELECT COUNT(*) FROM " + quoteIdent(m.Table()) + pkClause(m)
}

func selectSQL(m *types.Mapping) string {
	return "SELECT " + strings.Join(quoteIdents(m.Columns()), ", ") +
		" FROM " + quoteIdent(m.Table()) + pkClause(m)
}

func updateSQL(m *types.Mapping) string {
	nonKey := m.NonKeyFields()
	sets := make([]string, len(nonKey))
	for i, f := range nonKey {
		sets[i] = quoteIdent(f.Name()) + " = ?"
	}
	return "UPDATE " + quoteIdent(m.Table()) + " SET " + strings.Join(sets, ", ") + pkClause(m)
}

func deleteSQL(m *types.Mapping) string {
	return "DELETE FROM " + quoteIdent(m.Table()) + pkClause(m)
}
