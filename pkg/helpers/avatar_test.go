package helpers

import (
	"strings"
	"testing"
)

func TestDefaultAvatarURL(t *testing.T) {
	got := DefaultAvatarURL("cricketpro")
	if !strings.Contains(got, "name=cricketpro") {
		t.Fatalf("url = %q", got)
	}
	if !strings.Contains(got, "background=39FF14") || !strings.Contains(got, "color=000000") {
		t.Fatalf("branding missing: %q", got)
	}
}

func TestDefaultAvatarURLEscapes(t *testing.T) {
	got := DefaultAvatarURL("two words&more")
	if strings.Contains(got, " ") || strings.Contains(got, "words&more") {
		t.Fatalf("unescaped username in %q", got)
	}
}
