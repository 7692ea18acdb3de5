// Package presence tracks which users currently hold a live connection.
// It is the only shared mutable state in the realtime core; every access
// goes through one mutex.
package presence

import "sync"

// Conn is a non-owning handle to one client's live transport. The
// websocket layer owns the real connection; the registry only keeps a
// reference so the dispatcher and broadcasts can reach it.
type Conn interface {
	// Send queues a payload for delivery. It must not block; a full
	// buffer or closed connection reports false.
	Send(payload []byte) bool
	// Close tears the underlying transport down. Safe to call twice.
	Close()
}

// Registry 在线用户表：userID -> 当前连接
// 同一用户最多一条记录，后连接的覆盖先连接的（last connection wins）。
type Registry struct {
	mu    sync.Mutex
	conns map[uint]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[uint]Conn)}
}

// Register inserts or replaces the entry for userID and returns the
// previous handle if one was replaced. It never closes the old
// connection; that is the caller's decision.
func (r *Registry) Register(userID uint, conn Conn) (prev Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev = r.conns[userID]
	r.conns[userID] = conn
	if prev == conn {
		return nil
	}
	return prev
}

// Unregister removes the entry for userID only if the stored handle is
// conn. A stale disconnect from an already-replaced connection must not
// evict the newer one.
func (r *Registry) Unregister(userID uint, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conns[userID] != conn {
		return false
	}
	delete(r.conns, userID)
	return true
}

// Lookup returns the current handle for userID, if any.
func (r *Registry) Lookup(userID uint) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[userID]
	return conn, ok
}

// Snapshot returns the IDs of all currently online users. Order is
// unspecified.
func (r *Registry) Snapshot() []uint {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]uint, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	return ids
}
