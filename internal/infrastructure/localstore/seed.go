package localstore

import (
	"time"

	"github.com/sportsin/sportsin/internal/domain/entity"
)

// DemoProfiles returns the demo roster every local-mode install starts
// with. The seed command pushes the same rows into a postgres backend.
func DemoProfiles() []entity.Profile {
	return []entity.Profile{
		{
			ID:             "user-1",
			Username:       "cricketpro",
			Email:          "cricketpro@example.com",
			FullName:       "Cricket Pro",
			AvatarURL:      "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?w=100&h=100&fit=crop&auto=format",
			Sport:          entity.SportCricket,
			UserType:       entity.UserTypePlayer,
			Bio:            "Professional cricket player with 10+ years experience",
			Location:       "Mumbai, India",
			FollowersCount: 15200,
			FollowingCount: 482,
			PostsCount:     245,
			CreatedAt:      time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:             "user-2",
			Username:       "footballstar",
			Email:          "footballstar@example.com",
			FullName:       "Football Star",
			AvatarURL:      "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=100&h=100&fit=crop&auto=format",
			Sport:          entity.SportFootball,
			UserType:       entity.UserTypePlayer,
			Bio:            "Midfielder with passion for the beautiful game",
			Location:       "London, UK",
			FollowersCount: 8500,
			FollowingCount: 320,
			PostsCount:     156,
			CreatedAt:      time.Date(2024, 2, 20, 14, 30, 0, 0, time.UTC),
		},
		{
			ID:             "user-3",
			Username:       "basketballace",
			Email:          "basketballace@example.com",
			FullName:       "Basketball Ace",
			AvatarURL:      "https://images.unsplash.com/photo-1570295999919-56ceb5ecca61?w=100&h=100&fit=crop&auto=format",
			Sport:          entity.SportBasketball,
			UserType:       entity.UserTypePlayer,
			Bio:            "Point guard with killer crossover",
			Location:       "Los Angeles, USA",
			FollowersCount: 12800,
			FollowingCount: 650,
			PostsCount:     189,
			CreatedAt:      time.Date(2024, 1, 8, 9, 15, 0, 0, time.UTC),
		},
	}
}
