package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/internal/testutil"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

const createPerson = `CREATE TABLE IF NOT EXISTS Person (
    id integer NOT NULL,
    name varchar(56),
    address text,
    PRIMARY KEY (id)
)`

var personSchema = types.NewSchema("Person", "id", "name", "address")

// person is the entity used throughout the tests. Its mapping is built once
// at construction and references the instance's own fields.
type person struct {
	ID      int64
	Name    string
	Address string

	mapping *types.Mapping
}

func newPerson(id int64, name, address string) *person {
	p := &person{ID: id, Name: name, Address: address}
	p.mapping = personSchema.MustBind(&p.ID, &p.Name, &p.Address)
	return p
}

func (p *person) Mapping() *types.Mapping { return p.mapping }

// openTestConn opens a file-backed connection in a temp dir and closes it
// when the test ends.
func openTestConn(t *testing.T) *Conn {
	t.Helper()
	c, err := Open(types.Config{
		Path:   filepath.Join(t.TempDir(), "shelf.db"),
		Logger: testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

// openPersonConn opens a connection with the Person table created.
func openPersonConn(t *testing.T) *Conn {
	t.Helper()
	c := openTestConn(t)
	require.NoError(t, c.NewStatement().Exec(createPerson))
	return c
}

func countPersons(t *testing.T, c *Conn) int64 {
	t.Helper()
	n, err := ExecuteScalar[int64](c.NewStatement(), "SELECT COUNT(*) FROM Person")
	require.NoError(t, err)
	return n
}
