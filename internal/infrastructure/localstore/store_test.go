package localstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sportsin/sportsin/internal/domain/entity"
	"github.com/sportsin/sportsin/internal/domain/repository"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	return Open(path, nil), path
}

func TestOpenSeedsDemoProfiles(t *testing.T) {
	s, _ := openTestStore(t)

	for _, want := range []string{"user-1", "user-2", "user-3"} {
		p, err := s.Get(context.Background(), want)
		if err != nil {
			t.Fatalf("Get(%s): %v", want, err)
		}
		if p.Username == "" || !p.Sport.Valid() {
			t.Fatalf("seed row %s incomplete: %+v", want, p)
		}
		if _, err := s.Stats().Get(context.Background(), want); err != nil {
			t.Fatalf("stats for %s: %v", want, err)
		}
	}
}

func TestSignInPersistsAcrossReopen(t *testing.T) {
	s, path := openTestStore(t)

	id, err := s.SignInWithPassword(context.Background(), "cricketpro@example.com", "anything")
	if err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	if id.ID != "user-1" || !id.EmailVerified {
		t.Fatalf("identity = %+v", id)
	}

	reopened := Open(path, nil)
	restored, err := reopened.CurrentIdentity(context.Background())
	if err != nil {
		t.Fatalf("CurrentIdentity: %v", err)
	}
	if restored == nil || restored.ID != "user-1" {
		t.Fatalf("restored identity = %+v, want user-1", restored)
	}
}

func TestSignInUnknownEmail(t *testing.T) {
	s, _ := openTestStore(t)
	if _, err := s.SignInWithPassword(context.Background(), "nobody@example.com", "pw"); err == nil {
		t.Fatal("expected error for unknown email")
	}
}

func TestSignOutClearsPersistedSession(t *testing.T) {
	s, path := openTestStore(t)

	if _, err := s.SignInWithPassword(context.Background(), "footballstar@example.com", "pw"); err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	if err := s.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	restored, err := Open(path, nil).CurrentIdentity(context.Background())
	if err != nil {
		t.Fatalf("CurrentIdentity: %v", err)
	}
	if restored != nil {
		t.Fatalf("restored identity = %+v, want nil", restored)
	}
}

func TestSignUpVerifyFlow(t *testing.T) {
	s, _ := openTestStore(t)

	meta := entity.SignUpMetadata{Username: "newplayer", Sport: entity.SportBasketball, UserType: entity.UserTypePlayer}
	id, err := s.SignUp(context.Background(), "new@example.com", "password123", meta)
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if id.EmailVerified {
		t.Fatal("fresh sign-up must be unverified")
	}

	// The verification link is only logged in local mode; read the token
	// straight out of the store.
	s.mu.Lock()
	var token string
	for tok, accID := range s.tokens {
		if accID == id.ID {
			token = tok
		}
	}
	s.mu.Unlock()
	if token == "" {
		t.Fatal("no verification token issued")
	}

	verified, err := s.VerifyEmail(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if !verified.EmailVerified || verified.ID != id.ID {
		t.Fatalf("verified identity = %+v", verified)
	}
	if verified.Metadata.Username != "newplayer" {
		t.Fatalf("metadata lost through verification: %+v", verified.Metadata)
	}

	if _, err := s.VerifyEmail(context.Background(), token); err == nil {
		t.Fatal("token must be single use")
	}
}

func TestSignUpDuplicate(t *testing.T) {
	s, _ := openTestStore(t)
	meta := entity.SignUpMetadata{Username: "someone", Sport: entity.SportCricket, UserType: entity.UserTypePlayer}

	if _, err := s.SignUp(context.Background(), "cricketpro@example.com", "pw123456", meta); !errors.Is(err, repository.ErrUserAlreadyExists) {
		t.Fatalf("duplicate email err = %v, want ErrUserAlreadyExists", err)
	}

	meta.Username = "cricketpro"
	if _, err := s.SignUp(context.Background(), "fresh@example.com", "pw123456", meta); !errors.Is(err, repository.ErrUserAlreadyExists) {
		t.Fatalf("duplicate username err = %v, want ErrUserAlreadyExists", err)
	}
}

func TestProfileUpdatePersistsForCurrentUser(t *testing.T) {
	s, path := openTestStore(t)

	if _, err := s.SignInWithPassword(context.Background(), "cricketpro@example.com", "pw"); err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}

	bio := "Now coaching juniors"
	if _, err := s.Update(context.Background(), "user-1", entity.ProfileChanges{Bio: &bio}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	p, err := Open(path, nil).Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if p.Bio != bio {
		t.Fatalf("bio = %q, want %q", p.Bio, bio)
	}
}

func TestInsertConflicts(t *testing.T) {
	s, _ := openTestStore(t)

	if _, err := s.Insert(context.Background(), &entity.Profile{ID: "user-1", Username: "x"}); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("duplicate id err = %v, want ErrConflict", err)
	}
	if _, err := s.Insert(context.Background(), &entity.Profile{ID: "user-99", Username: "cricketpro"}); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("duplicate username err = %v, want ErrConflict", err)
	}
}

func TestLikesPersist(t *testing.T) {
	s, path := openTestStore(t)

	if err := s.LikePost("post-1"); err != nil {
		t.Fatalf("LikePost: %v", err)
	}
	if err := s.LikePost("post-1"); err != nil {
		t.Fatalf("LikePost repeat: %v", err)
	}
	if err := s.LikePost("post-2"); err != nil {
		t.Fatalf("LikePost: %v", err)
	}
	if err := s.UnlikePost("post-2"); err != nil {
		t.Fatalf("UnlikePost: %v", err)
	}

	reopened := Open(path, nil)
	ids := reopened.LikedPosts()
	if len(ids) != 1 || ids[0] != "post-1" {
		t.Fatalf("liked posts = %v, want [post-1]", ids)
	}
	if !reopened.HasLiked("post-1") || reopened.HasLiked("post-2") {
		t.Fatal("HasLiked wrong after reopen")
	}
}
