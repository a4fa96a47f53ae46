package manager

import (
	"tutord/pkg/types"
)

// Snapshot returns a read-only view of the manager state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sess *Session
	if m.session != nil {
		cp := *m.session
		sess = &cp
	}
	return Snapshot{Phase: m.phase, Session: sess, Err: m.err}
}

// Status builds the manager portion of the /status response.
// Download and asset fields are filled in by the caller.
func (m *Manager) Status() types.StatusResponse {
	snap := m.Snapshot()
	m.mu.RLock()
	inits, gens := m.initsTotal, m.generations
	m.mu.RUnlock()
	now := timeNow()
	resp := types.StatusResponse{
		Phase:            string(snap.Phase),
		LastError:        snap.Err,
		UptimeSeconds:    int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix:   now.Unix(),
		InitsTotal:       inits,
		GenerationsTotal: gens,
	}
	if s := snap.Session; s != nil {
		resp.Session = &types.SessionStatus{
			ID:                    s.ID,
			AssetPath:             s.AssetPath,
			Backend:               s.Backend,
			UseAcceleratedBackend: s.Config.UseAcceleratedBackend,
			MaxSequenceTokens:     s.Config.MaxSequenceTokens,
			BackendThreadHint:     s.Config.BackendThreadHint,
			ReadySinceUnix:        s.ReadySince.Unix(),
		}
	}
	return resp
}
