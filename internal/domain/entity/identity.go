package entity

// Identity is an authenticated principal issued by the credential store.
// It is independent of the application-level Profile; the two are related
// one-to-one by ID.
type Identity struct {
	ID            string
	Email         string
	EmailVerified bool

	// Metadata carries the sign-up fields attached to the identity so they
	// survive until email verification completes and a profile row can be
	// provisioned from them.
	Metadata SignUpMetadata
}

// SignUpMetadata is the auxiliary profile data collected at sign-up time.
type SignUpMetadata struct {
	Username string `json:"username"`
	Sport    Sport  `json:"sport"`
	UserType UserType `json:"user_type"`
}

// IsZero reports whether no sign-up metadata was carried on the identity.
func (m SignUpMetadata) IsZero() bool {
	return m.Username == "" && m.Sport == "" && m.UserType == ""
}
