package application

import (
	"sync"

	"github.com/ericfisherdev/autoreview/internal/domain/model"
)

type mountedBoard struct {
	board       *Board
	unsubscribe func()
}

// BoardRegistry holds the currently mounted board per user. Each mounted
// board is subscribed to the session hub and is torn down, together with its
// subscription, when the user's session changes or a newer board replaces it.
type BoardRegistry struct {
	mu     sync.Mutex
	hub    *SessionHub
	boards map[string]mountedBoard
}

// NewBoardRegistry creates a registry bound to hub.
func NewBoardRegistry(hub *SessionHub) *BoardRegistry {
	return &BoardRegistry{
		hub:    hub,
		boards: make(map[string]mountedBoard),
	}
}

// Mount makes b the board for its user, tearing down any previous one.
func (r *BoardRegistry) Mount(b *Board) {
	uid := b.UID()
	unsubscribe := r.hub.Subscribe(func(changedUID string, _ *model.Session) {
		if changedUID == uid {
			r.unmountBoard(uid, b)
		}
	})

	r.mu.Lock()
	prev, ok := r.boards[uid]
	r.boards[uid] = mountedBoard{board: b, unsubscribe: unsubscribe}
	r.mu.Unlock()

	if ok {
		prev.unsubscribe()
	}
}

// Board returns the mounted board for uid.
func (r *BoardRegistry) Board(uid string) (*Board, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.boards[uid]
	return m.board, ok
}

// Unmount tears down the board for uid, if any.
func (r *BoardRegistry) Unmount(uid string) {
	r.mu.Lock()
	m, ok := r.boards[uid]
	delete(r.boards, uid)
	r.mu.Unlock()

	if ok {
		m.unsubscribe()
	}
}

// unmountBoard removes b only if it is still the mounted board for uid, so a
// late notification cannot tear down a newer mount.
func (r *BoardRegistry) unmountBoard(uid string, b *Board) {
	r.mu.Lock()
	m, ok := r.boards[uid]
	if !ok || m.board != b {
		r.mu.Unlock()
		return
	}
	delete(r.boards, uid)
	r.mu.Unlock()

	m.unsubscribe()
}

// Len returns the number of mounted boards.
func (r *BoardRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}
