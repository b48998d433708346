package types

import "fmt"

// Schema is the shape of a persistable entity type: its table name and
// ordered column names, primary key first. A Schema holds no value
// references and can be shared by every instance of the entity type.
type Schema struct {
	table   string
	columns []string
}

// NewSchema returns the shape of table with the given columns.
func NewSchema(table string, columns ...string) *Schema {
	return &Schema{table: table, columns: append([]string(nil), columns...)}
}

// Table returns the table name.
func (s *Schema) Table() string { return s.table }

// Columns returns a copy of the column names in declaration order.
func (s *Schema) Columns() []string { return append([]string(nil), s.columns...) }

// Bind builds the Mapping of one entity instance. ptrs must point into that
// instance, one per column, in column order.
func (s *Schema) Bind(ptrs ...any) (*Mapping, error) {
	if len(ptrs) != len(s.columns) {
		return nil, &Error{
			Kind:    UnsupportedType,
			Message: fmt.Sprintf("table %q: %d columns but %d references", s.table, len(s.columns), len(ptrs)),
		}
	}
	fields := make([]Field, len(ptrs))
	for i, p := range ptrs {
		f, err := Bind(s.columns[i], p)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return &Mapping{table: s.table, fields: fields}, nil
}

// MustBind is like Bind but panics on error. It suits entity constructors
// whose field types are fixed at compile time.
func (s *Schema) MustBind(ptrs ...any) *Mapping {
	m, err := s.Bind(ptrs...)
	if err != nil {
		panic(err)
	}
	return m
}

// Mapper is implemented by entities that expose their table mapping.
type Mapper interface {
	Mapping() *Mapping
}

// Mapping binds one entity instance to a table: the table name and the
// ordered fields, the first of which is the primary key.
type Mapping struct {
	table  string
	fields []Field
}

// NewMapping returns a mapping of table over fields.
func NewMapping(table string, fields ...Field) *Mapping {
	return &Mapping{table: table, fields: append([]Field(nil), fields...)}
}

// Mapping returns m, so a *Mapping can be passed wherever a Mapper is
// expected.
func (m *Mapping) Mapping() *Mapping { return m }

// CheckBindings reports whether the mapping has a table name and at least
// two bound fields (the primary key and one more).
func (m *Mapping) CheckBindings() bool {
	if m == nil || m.table == "" || len(m.fields) < 2 {
		return false
	}
	for _, f := range m.fields {
		if !f.Bound() || f.Name() == "" {
			return false
		}
	}
	return true
}

// Table returns the table name.
func (m *Mapping) Table() string { return m.table }

// PrimaryKey returns the first field.
func (m *Mapping) PrimaryKey() Field {
	if len(m.fields) == 0 {
		return Field{}
	}
	return m.fields[0]
}

// Fields returns the fields in declaration order.
func (m *Mapping) Fields() []Field { return m.fields }

// NonKeyFields returns every field after the primary key.
func (m *Mapping) NonKeyFields() []Field {
	if len(m.fields) < 2 {
		return nil
	}
	return m.fields[1:]
}

// Columns returns the field names in declaration order.
func (m *Mapping) Columns() []string {
	cols := make([]string, len(m.fields))
	for i, f := range m.fields {
		cols[i] = f.Name()
	}
	return cols
}

// Values reads every field through its reference, in declaration order.
func (m *Mapping) Values() []Value {
	return ValuesOf(m.fields...)
}

// ValuesOf reads the current value of each field.
func ValuesOf(fields ...Field) []Value {
	vals := make([]Value, len(fields))
	for i, f := range fields {
		vals[i] = f.Value()
	}
	return vals
}
