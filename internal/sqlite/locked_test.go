package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func TestLockedConcurrentSaves(t *testing.T) {
	c := openPersonConn(t)
	l := NewLocked(c)

	const workers, perWorker = 8, 25
	g, _ := errgroup.WithContext(context.Background())
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < perWorker; i++ {
				id := int64(w*perWorker + i)
				err := l.Do(func(c *Conn) error {
					q, err := NewQuery(c)
					if err != nil {
						return err
					}
					return q.SaveOrUpdate(newPerson(id, "worker", ""))
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	err := l.Do(func(c *Conn) error {
		n, err := ExecuteScalar[int64](c.NewStatement(), "SELECT COUNT(*) FROM Person")
		assert.Equal(t, int64(workers*perWorker), n)
		return err
	})
	require.NoError(t, err)

	require.NoError(t, l.Close())
	assert.False(t, c.IsOpen())
}

func TestLockedPropagatesErrors(t *testing.T) {
	l := NewLocked(openTestConn(t))

	err := l.Do(func(c *Conn) error {
		return c.NewStatement().Execute("SELECT * FROM nowhere")
	})
	assert.ErrorIs(t, err, types.ErrStatementPrepareFailed)
}
