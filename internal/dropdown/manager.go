package dropdown

import "sync"

// Change describes one transition of the active identifier. An empty string
// means no dropdown is active.
type Change struct {
	Previous string
	Current  string
}

// Superseded reports whether a previously active dropdown lost its active
// status to another one (as opposed to being cleared).
func (c Change) Superseded() bool {
	return c.Previous != "" && c.Current != ""
}

type Observer func(Change)

type subscription struct {
	id uint64
	fn Observer
}

type Manager struct {
	// dispatchMu orders mutation + observer delivery; mu guards the fields.
	dispatchMu sync.Mutex

	mu        sync.Mutex
	active    string
	observers []subscription
	nextSubID uint64
}

func New() *Manager {
	return &Manager{}
}

// Register declares that a dropdown with this identifier exists. The
// Manager keeps no list of dropdowns, so this is a no-op hook.
func (m *Manager) Register(id string) {}

// SetActive makes id the active dropdown, replacing whatever was active.
// Setting the already active id again changes nothing and notifies nobody.
func (m *Manager) SetActive(id string) {
	if id == "" {
		return
	}

	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	m.mu.Lock()
	prev := m.active
	if prev == id {
		m.mu.Unlock()
		return
	}
	m.active = id
	observers := m.snapshotLocked()
	m.mu.Unlock()

	notify(observers, Change{Previous: prev, Current: id})
}

// ClearActive relinquishes the active status of id. It does nothing when a
// different dropdown is active, so a stale close cannot shut the dropdown
// that superseded it.
func (m *Manager) ClearActive(id string) {
	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	m.mu.Lock()
	if id == "" || m.active != id {
		m.mu.Unlock()
		return
	}
	m.active = ""
	observers := m.snapshotLocked()
	m.mu.Unlock()

	notify(observers, Change{Previous: id, Current: ""})
}

// Active returns the active identifier and whether there is one.
func (m *Manager) Active() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active, m.active != ""
}

func (m *Manager) IsActive(id string) bool {
	active, ok := m.Active()
	return ok && active == id
}

// Subscribe registers fn for every subsequent change and returns a function
// that removes it. Observers may read the Manager but must not mutate it.
func (m *Manager) Subscribe(fn Observer) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSubID++
	id := m.nextSubID
	m.observers = append(m.observers, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { m.unsubscribe(id) })
	}
}

func (m *Manager) unsubscribe(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.observers {
		if sub.id == id {
			m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
			return
		}
	}
}

func (m *Manager) snapshotLocked() []Observer {
	if len(m.observers) == 0 {
		return nil
	}
	fns := make([]Observer, len(m.observers))
	for i, sub := range m.observers {
		fns[i] = sub.fn
	}
	return fns
}

func notify(observers []Observer, change Change) {
	for _, fn := range observers {
		fn(change)
	}
}
