// Package session holds the consumed authentication state. The engine never
// mints or validates tokens; it only carries whatever bearer credential the
// user's sign-in produced, plus the auto-detection opt-out preference.
package session

import "sync"

type Manager struct {
	mu         sync.RWMutex
	token      string
	autoDetect bool
	onSignIn   []func()
	onSignOut  []func()
}

func NewManager(autoDetectDefault bool) *Manager {
	return &Manager{autoDetect: autoDetectDefault}
}

// SignIn stores the bearer token and fires sign-in hooks on the transition
// from signed-out to signed-in. Replacing an existing token is not a transition.
func (m *Manager) SignIn(token string) {
	m.mu.Lock()
	wasAuthenticated := m.token != ""
	m.token = token
	hooks := m.onSignIn
	m.mu.Unlock()

	if !wasAuthenticated && token != "" {
		for _, hook := range hooks {
			hook()
		}
	}
}

func (m *Manager) SignOut() {
	m.mu.Lock()
	wasAuthenticated := m.token != ""
	m.token = ""
	hooks := m.onSignOut
	m.mu.Unlock()

	if wasAuthenticated {
		for _, hook := range hooks {
			hook()
		}
	}
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) Authenticated() bool {
	return m.Token() != ""
}

// AutoDetectEnabled reports the stored preference; absence of an explicit
// opt-out defaults to enabled.
func (m *Manager) AutoDetectEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.autoDetect
}

func (m *Manager) SetAutoDetect(enabled bool) {
	m.mu.Lock()
	m.autoDetect = enabled
	m.mu.Unlock()
}

// OnSignIn registers a hook fired on every signed-out → signed-in transition.
func (m *Manager) OnSignIn(hook func()) {
	m.mu.Lock()
	m.onSignIn = append(m.onSignIn, hook)
	m.mu.Unlock()
}

// OnSignOut registers a hook fired when the session ends.
func (m *Manager) OnSignOut(hook func()) {
	m.mu.Lock()
	m.onSignOut = append(m.onSignOut, hook)
	m.mu.Unlock()
}
