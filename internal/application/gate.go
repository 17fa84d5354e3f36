package application

// DecisionKind is what the presentation layer should do with the current
// session state.
type DecisionKind string

const (
	ShowLoading    DecisionKind = "loading"
	ShowContent    DecisionKind = "content"
	RedirectSignIn DecisionKind = "redirect"
)

// Decision is the auth gate's verdict for one session snapshot.
type Decision struct {
	Kind       DecisionKind
	RedirectTo string
}

// Decide maps session state to a gate decision. It is a pure function with
// no side effects, re-evaluated on every session change. The decision is
// identity-based: an identity with no profile still sees content.
func Decide(s Session) Decision {
	if s.Loading {
		return Decision{Kind: ShowLoading}
	}
	if s.Identity != nil {
		return Decision{Kind: ShowContent}
	}
	return Decision{Kind: RedirectSignIn, RedirectTo: "/signin"}
}
