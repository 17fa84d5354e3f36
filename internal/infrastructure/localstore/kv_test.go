package localstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestKVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	kv := OpenKV(path)
	if err := kv.Set("greeting", map[string]string{"hello": "world"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reopened := OpenKV(path)
	var got map[string]string
	ok, err := reopened.Get("greeting", &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("key missing after reopen")
	}
	if got["hello"] != "world" {
		t.Fatalf("value = %v", got)
	}
}

func TestKVMissingKey(t *testing.T) {
	kv := OpenKV(filepath.Join(t.TempDir(), "state.json"))
	var dest string
	ok, err := kv.Get("absent", &dest)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("absent key reported present")
	}
}

func TestKVDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	kv := OpenKV(path)
	if err := kv.Set("k", 42); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var dest int
	if ok, _ := OpenKV(path).Get("k", &dest); ok {
		t.Fatal("deleted key survived reopen")
	}
}

func TestKVToleratesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	kv := OpenKV(path)
	if err := kv.Set("k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Clobber the file and make sure OpenKV starts fresh instead of failing.
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("clobber: %v", err)
	}
	var dest string
	if ok, _ := OpenKV(path).Get("k", &dest); ok {
		t.Fatal("corrupt file yielded data")
	}
}
