package session

// ActiveLocks exposes the lock table size to external tests.
func ActiveLocks(m *Manager) int {
	return m.activeLocks()
}
