package entity

import "time"

// Sport is the discipline a profile is registered under.
type Sport string

const (
	SportCricket    Sport = "Cricket"
	SportFootball   Sport = "Football"
	SportBasketball Sport = "Basketball"
)

func (s Sport) Valid() bool {
	switch s {
	case SportCricket, SportFootball, SportBasketball:
		return true
	}
	return false
}

// UserType distinguishes individual players from academy accounts.
type UserType string

const (
	UserTypePlayer  UserType = "Player"
	UserTypeAcademy UserType = "Academy"
)

func (t UserType) Valid() bool {
	return t == UserTypePlayer || t == UserTypeAcademy
}

// Profile is the public sports-platform record for a user. Its ID always
// equals the ID of the verified identity it belongs to; a profile must never
// exist without one.
type Profile struct {
	ID             string
	Username       string
	Email          string
	FullName       string
	AvatarURL      string
	Sport          Sport
	UserType       UserType
	Bio            string
	Location       string
	Website        string
	FollowersCount int
	FollowingCount int
	PostsCount     int
	CreatedAt      time.Time
}

// ProfileChanges is a partial update; nil fields are left untouched.
// Counters are mutated by downstream features, never through here.
type ProfileChanges struct {
	Username  *string
	FullName  *string
	AvatarURL *string
	Bio       *string
	Location  *string
	Website   *string
}

// PlayerStats is the default performance-statistics row provisioned as a
// sibling of every new profile.
type PlayerStats struct {
	UserID        string
	MatchesPlayed int
	Wins          int
	Losses        int
	CreatedAt     time.Time
}
