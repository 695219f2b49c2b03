package flower

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// Sentinel errors for entity model operations.
var (
	// ErrDuplicateName indicates an entity with the same name is already
	// registered with its owner.
	ErrDuplicateName = errors.New("flower: duplicate entity name")

	// ErrNotFound indicates a by-name lookup failed.
	ErrNotFound = errors.New("flower: entity not found")

	// ErrBadRange indicates a sequence sub-range outside the sequence bounds.
	ErrBadRange = errors.New("flower: sub-range outside sequence")

	// ErrInvariant indicates an entity-graph contract was broken. Operations
	// returning it must not be retried; the hierarchy is in an undefined state.
	ErrInvariant = errors.New("flower: invariant violation")

	// ErrCorruptStream indicates a binary load encountered an unexpected
	// element tag or truncated data.
	ErrCorruptStream = errors.New("flower: corrupt binary stream")
)

// NameAllocator hands out names that are monotone and collision-free for the
// lifetime of the store.
type NameAllocator interface {
	// UniqueName returns a fresh name, never returned before by this allocator.
	UniqueName() string
}

// Store is the persistence boundary of the entity model. The core treats it as
// opaque: it allocates names, and it makes nets and sequences discoverable by
// name. Nested nets are wired through the store by name, never by pointer.
type Store interface {
	NameAllocator

	// AddNet registers a net under its name.
	AddNet(n *Net) error
	// Net returns the net with the given name, or nil.
	Net(name string) *Net
	// RemoveNet unregisters a net.
	RemoveNet(n *Net)

	// AddSequence registers a sequence under its name.
	AddSequence(s *Sequence) error
	// Sequence returns the sequence with the given name, or nil.
	Sequence(name string) *Sequence
}

// MemStore is the in-memory Store used by the pipeline and the tests.
// It is not safe for concurrent use; the pipeline is single-threaded.
type MemStore struct {
	next      uint64
	nets      map[string]*Net
	sequences map[string]*Sequence
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		nets:      make(map[string]*Net),
		sequences: make(map[string]*Sequence),
	}
}

// UniqueName returns "n<k>" with k strictly increasing.
func (m *MemStore) UniqueName() string {
	m.next++
	return "n" + strconv.FormatUint(m.next, 10)
}

// AddNet registers a net under its name.
func (m *MemStore) AddNet(n *Net) error {
	if _, ok := m.nets[n.Name()]; ok {
		return fmt.Errorf("%w: net %q", ErrDuplicateName, n.Name())
	}
	m.nets[n.Name()] = n
	return nil
}

// Net returns the net with the given name, or nil.
func (m *MemStore) Net(name string) *Net { return m.nets[name] }

// RemoveNet unregisters a net.
func (m *MemStore) RemoveNet(n *Net) { delete(m.nets, n.Name()) }

// AddSequence registers a sequence under its name.
func (m *MemStore) AddSequence(s *Sequence) error {
	if _, ok := m.sequences[s.Name()]; ok {
		return fmt.Errorf("%w: sequence %q", ErrDuplicateName, s.Name())
	}
	m.sequences[s.Name()] = s
	return nil
}

// Sequence returns the sequence with the given name, or nil.
func (m *MemStore) Sequence(name string) *Sequence { return m.sequences[name] }

// NetNames returns the names of all registered nets in sorted order.
func (m *MemStore) NetNames() []string {
	names := make([]string, 0, len(m.nets))
	for name := range m.nets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
