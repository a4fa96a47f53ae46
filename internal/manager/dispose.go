package manager

import "context"

// Dispose tears down the active session and releases the backend.
// It waits for an in-flight generate call to finish first. The phase stays
// disposing until the backend has released the model, so an Initialize in
// that window is refused. Disposing an uninitialized manager is a no-op.
func (m *Manager) Dispose(ctx context.Context) error {
	release, err := m.beginGeneration(ctx)
	if err != nil {
		return err
	}
	defer release()

	m.mu.Lock()
	if m.phase.busy() {
		m.mu.Unlock()
		return ErrAlreadyInProgress
	}
	sess := m.session
	m.session = nil
	m.err = ""
	if sess == nil {
		m.phase = PhaseUninitialized
		m.mu.Unlock()
		return nil
	}
	m.phase = PhaseDisposing
	m.mu.Unlock()

	err = m.backend.Dispose()

	m.mu.Lock()
	m.phase = PhaseUninitialized
	m.mu.Unlock()
	m.log.Info().Str("session", sess.ID).Msg("manager event=dispose")
	m.publish(Event{Name: "dispose", SessionID: sess.ID, Fields: map[string]any{}})
	return err
}
