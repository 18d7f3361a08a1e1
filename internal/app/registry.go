package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mkalra/peercall/internal/domain"
)

// Registry owns both directions of the phone-number/connection binding.
// Nothing else mutates these maps; callers only see the four operations
// below. All of them are infallible: a missing key is a no-op or an
// empty result, never an error.
type Registry struct {
	mu          sync.RWMutex
	connByPhone map[domain.PhoneNo]domain.ConnID
	phoneByConn map[domain.ConnID]domain.PhoneNo
}

func NewRegistry() *Registry {
	return &Registry{
		connByPhone: make(map[domain.PhoneNo]domain.ConnID),
		phoneByConn: make(map[domain.ConnID]domain.PhoneNo),
	}
}

// Bind points phone at conn in both directions. Any previous connection
// bound to the same phone is fully erased first, so a stale socket id can
// never be resolved through the reverse map after a reconnect. The same
// holds for a previous phone bound to this conn.
func (r *Registry) Bind(phone domain.PhoneNo, conn domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.connByPhone[phone]; ok && old != conn {
		delete(r.phoneByConn, old)
	}
	if oldPhone, ok := r.phoneByConn[conn]; ok && oldPhone != phone {
		delete(r.connByPhone, oldPhone)
	}
	r.connByPhone[phone] = conn
	r.phoneByConn[conn] = phone
	log.Info().Str("module", "app.registry").Str("phone", string(phone)).Str("conn", string(conn)).Msg("bound identity")
}

// ConnOf resolves a phone number to its live connection id.
func (r *Registry) ConnOf(phone domain.PhoneNo) (domain.ConnID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.connByPhone[phone]
	return conn, ok
}

// PhoneOf resolves a connection id back to the phone number bound to it.
func (r *Registry) PhoneOf(conn domain.ConnID) (domain.PhoneNo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	phone, ok := r.phoneByConn[conn]
	return phone, ok
}

// Unbind removes the binding for conn. The forward entry is only removed
// when it still points back at this same conn; a slow disconnect must not
// erase the fresher binding a reconnect has already established.
func (r *Registry) Unbind(conn domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	phone, ok := r.phoneByConn[conn]
	if !ok {
		return
	}
	if cur, ok := r.connByPhone[phone]; ok && cur == conn {
		delete(r.connByPhone, phone)
	}
	delete(r.phoneByConn, conn)
	log.Info().Str("module", "app.registry").Str("phone", string(phone)).Str("conn", string(conn)).Msg("unbound identity")
}
