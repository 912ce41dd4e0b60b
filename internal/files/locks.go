package files

import "sync"

// nameLocks serializes mutations per file name so that a blob write and
// its metadata write cannot interleave with another mutation of the same
// name. Entries are reference-counted and removed once unused.
type nameLocks struct {
	mu    sync.Mutex
	locks map[string]*nameLock
}

type nameLock struct {
	mu   sync.Mutex
	refs int
}

func newNameLocks() *nameLocks {
	return &nameLocks{locks: make(map[string]*nameLock)}
}

func (l *nameLocks) Lock(name string) {
	l.mu.Lock()
	e, ok := l.locks[name]
	if !ok {
		e = &nameLock{}
		l.locks[name] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
}

func (l *nameLocks) Unlock(name string) {
	l.mu.Lock()
	e := l.locks[name]
	e.refs--
	if e.refs == 0 {
		delete(l.locks, name)
	}
	l.mu.Unlock()

	e.mu.Unlock()
}
