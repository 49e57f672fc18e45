package session

import "testing"

func TestSignInFiresHookOnlyOnTransition(t *testing.T) {
	m := NewManager(true)
	fired := 0
	m.OnSignIn(func() { fired++ })

	m.SignIn("token-a")
	m.SignIn("token-b") // token refresh, not a transition
	if fired != 1 {
		t.Errorf("Sign-in hook fired %d times, want 1", fired)
	}
	if m.Token() != "token-b" {
		t.Errorf("Token = %q, want the refreshed one", m.Token())
	}

	m.SignOut()
	m.SignIn("token-c")
	if fired != 2 {
		t.Errorf("Sign-in hook fired %d times after a full cycle, want 2", fired)
	}
}

func TestSignOutFiresHookOnlyWhenAuthenticated(t *testing.T) {
	m := NewManager(true)
	fired := 0
	m.OnSignOut(func() { fired++ })

	m.SignOut() // already signed out
	if fired != 0 {
		t.Error("Sign-out hook must not fire while signed out")
	}

	m.SignIn("token")
	m.SignOut()
	m.SignOut()
	if fired != 1 {
		t.Errorf("Sign-out hook fired %d times, want 1", fired)
	}
	if m.Authenticated() {
		t.Error("Expected signed out")
	}
}

func TestSignInWithEmptyTokenIsNotATransition(t *testing.T) {
	m := NewManager(true)
	fired := 0
	m.OnSignIn(func() { fired++ })

	m.SignIn("")
	if fired != 0 || m.Authenticated() {
		t.Error("An empty token must not sign anyone in")
	}
}

func TestAutoDetectPreference(t *testing.T) {
	m := NewManager(true)
	if !m.AutoDetectEnabled() {
		t.Error("Default must be enabled")
	}
	m.SetAutoDetect(false)
	if m.AutoDetectEnabled() {
		t.Error("Opt-out not stored")
	}
}
