package docker

import (
	"sync"

	"basehive/internal/check"
)

// portSet tracks host-port reservations for this process. Ports are
// marked used forever once reserved; nothing recycles them on project
// deletion, so allocations within a process lifetime are monotonic.
type portSet struct {
	mu   sync.Mutex
	base int
	used map[int]bool
}

func newPortSet(base int) *portSet {
	check.Assertf(base > 0, "port base %d must be positive", base)
	return &portSet{base: base, used: make(map[int]bool)}
}

// Mark records an externally observed port as used.
func (s *portSet) Mark(port int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.used[port] = true
}

// Reserve returns the lowest port >= base not already used and marks it.
func (s *portSet) Reserve() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	port := s.base
	for s.used[port] {
		port++
	}
	s.used[port] = true
	check.Assert(port < 65536, "port space exhausted")
	return port
}
