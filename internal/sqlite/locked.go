package sqlite

import "sync"

// Locked serializes access to a Conn shared between goroutines. Conn itself
// does no locking; Locked is the external mutual exclusion around it.
type Locked struct {
	mu   sync.Mutex
	conn *Conn
}

// NewLocked wraps c. Callers must not use c directly afterwards.
func NewLocked(c *Conn) *Locked {
	return &Locked{conn: c}
}

// Do runs fn with exclusive use of the connection.
func (l *Locked) Do(fn func(*Conn) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.conn)
}

// Close closes the wrapped connection once no fn is running.
func (l *Locked) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.Close()
}
