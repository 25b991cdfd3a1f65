package model

// BootstrapState is a step of the profile mount sequence.
type BootstrapState string

const (
	BootstrapUnauthenticated      BootstrapState = "unauthenticated"
	BootstrapAuthenticating       BootstrapState = "authenticating"
	BootstrapAuthenticatedNoToken BootstrapState = "authenticated_no_token"
	BootstrapAuthenticatedLoading BootstrapState = "authenticated_loading"
	BootstrapAuthenticatedReady   BootstrapState = "authenticated_ready"
	BootstrapAuthenticatedError   BootstrapState = "authenticated_error"
)

// User-facing messages for the two error states.
const (
	MessageTokenNotFound = "GitHub token not found. Please sign in again."
	MessageFetchFailed   = "Failed to fetch repositories. Please sign in again."
)

var bootstrapTransitions = map[BootstrapState][]BootstrapState{
	BootstrapUnauthenticated: {BootstrapAuthenticating},
	BootstrapAuthenticating: {
		BootstrapAuthenticatedNoToken,
		BootstrapAuthenticatedLoading,
		BootstrapUnauthenticated,
	},
	BootstrapAuthenticatedNoToken: {BootstrapUnauthenticated},
	BootstrapAuthenticatedLoading: {
		BootstrapAuthenticatedReady,
		BootstrapAuthenticatedError,
		BootstrapUnauthenticated,
	},
	BootstrapAuthenticatedReady: {BootstrapUnauthenticated},
	BootstrapAuthenticatedError: {BootstrapUnauthenticated},
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s BootstrapState) CanTransitionTo(next BootstrapState) bool {
	for _, allowed := range bootstrapTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsAuthenticated reports whether a session exists in this state.
func (s BootstrapState) IsAuthenticated() bool {
	switch s {
	case BootstrapAuthenticatedNoToken, BootstrapAuthenticatedLoading,
		BootstrapAuthenticatedReady, BootstrapAuthenticatedError:
		return true
	}
	return false
}

// IsTerminal reports whether the state is a stable display state for a mount.
func (s BootstrapState) IsTerminal() bool {
	return s == BootstrapAuthenticatedReady || s == BootstrapAuthenticatedError || s == BootstrapAuthenticatedNoToken
}
