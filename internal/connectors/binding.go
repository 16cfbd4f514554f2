package connectors

import (
	"sync"

	"github.com/custodia-labs/semindex-cli/internal/core/domain"
)

// Bound holds the persisted identities stamped onto a handler at
// registration time. Handler implementations embed it to satisfy the
// Bind/Binding half of the driven.SourceHandler port.
type Bound struct {
	mu      sync.RWMutex
	binding domain.HandlerBinding
}

// Bind stores the binding. Called once by the resolver during registration.
func (b *Bound) Bind(binding domain.HandlerBinding) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.binding = binding
}

// Binding returns the stored binding; the zero value before registration.
func (b *Bound) Binding() domain.HandlerBinding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.binding
}

// TypeID returns the bound record id for a declared source-type name, or
// the empty string before registration.
func (b *Bound) TypeID(name string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.binding.TypeIDs[name]
}
