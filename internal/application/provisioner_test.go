package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sportsin/sportsin/internal/domain/entity"
)

func TestEnsureCreatesProfileAndStats(t *testing.T) {
	profiles := newMemProfiles()
	stats := newMemStats()
	prov := NewProvisioner(profiles, stats, nil, nil)

	id := verifiedIdentity("u1")
	p, err := prov.Ensure(context.Background(), id)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if p == nil || p.ID != "u1" {
		t.Fatalf("profile = %+v, want id u1", p)
	}
	if p.Username != id.Metadata.Username || p.Sport != id.Metadata.Sport || p.UserType != id.Metadata.UserType {
		t.Fatalf("profile fields not taken from metadata: %+v", p)
	}
	if p.Email != id.Email {
		t.Fatalf("email = %q, want %q", p.Email, id.Email)
	}
	if p.AvatarURL == "" {
		t.Fatal("default avatar not assigned")
	}
	if _, err := stats.Get(context.Background(), "u1"); err != nil {
		t.Fatalf("stats row missing: %v", err)
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	profiles := newMemProfiles()
	prov := NewProvisioner(profiles, newMemStats(), nil, nil)
	id := verifiedIdentity("u1")

	first, err := prov.Ensure(context.Background(), id)
	if err != nil {
		t.Fatalf("first Ensure: %v", err)
	}
	second, err := prov.Ensure(context.Background(), id)
	if err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if profiles.insertCalls != 1 {
		t.Fatalf("insert calls = %d, want 1", profiles.insertCalls)
	}
	if first.ID != second.ID || first.Username != second.Username {
		t.Fatalf("second Ensure returned a different row: %+v vs %+v", first, second)
	}
}

func TestEnsureNoMetadataNoRow(t *testing.T) {
	profiles := newMemProfiles()
	prov := NewProvisioner(profiles, newMemStats(), nil, nil)

	id := &entity.Identity{ID: "u1", Email: "u1@example.com", EmailVerified: true}
	p, err := prov.Ensure(context.Background(), id)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if p != nil {
		t.Fatalf("profile = %+v, want nil without metadata", p)
	}
	if profiles.insertCalls != 0 {
		t.Fatalf("insert calls = %d, want 0", profiles.insertCalls)
	}
}

func TestEnsureLostRaceIsSuccess(t *testing.T) {
	profiles := newMemProfiles()
	prov := NewProvisioner(profiles, newMemStats(), nil, nil)
	id := verifiedIdentity("u1")

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := prov.Ensure(context.Background(), id)
			if err != nil {
				errs <- err
				return
			}
			if p == nil || p.ID != "u1" {
				errs <- errors.New("nil or wrong profile from concurrent Ensure")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Ensure: %v", err)
	}

	profiles.mu.Lock()
	rows := len(profiles.rows)
	profiles.mu.Unlock()
	if rows != 1 {
		t.Fatalf("profile rows = %d, want 1", rows)
	}
}

func TestEnsurePropagatesStoreError(t *testing.T) {
	profiles := newMemProfiles()
	profiles.getErr = errors.New("connection refused")
	prov := NewProvisioner(profiles, newMemStats(), nil, nil)

	if _, err := prov.Ensure(context.Background(), verifiedIdentity("u1")); err == nil {
		t.Fatal("expected store error")
	}
	if profiles.insertCalls != 0 {
		t.Fatal("insert attempted after failed existence check")
	}
}
