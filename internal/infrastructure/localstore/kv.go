package localstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Well-known keys, matching the browser build's localStorage layout.
const (
	KeyCurrentUser = "sportsin_current_user"
	KeyLikedPosts  = "sportsin_liked_posts"
)

// KV is a flat string-keyed JSON store persisted to a single file. It stands
// in for the browser's localStorage: read once at startup, written on every
// mutation.
type KV struct {
	path string

	mu   sync.Mutex
	data map[string]json.RawMessage
}

// OpenKV loads the store at path, starting empty when the file is missing
// or unreadable.
func OpenKV(path string) *KV {
	kv := &KV{path: path, data: map[string]json.RawMessage{}}
	b, err := os.ReadFile(path)
	if err != nil {
		return kv
	}
	if err := json.Unmarshal(b, &kv.data); err != nil {
		kv.data = map[string]json.RawMessage{}
	}
	return kv
}

// Get unmarshals the value under key into dest. The bool reports presence.
func (kv *KV) Get(key string, dest any) (bool, error) {
	kv.mu.Lock()
	raw, ok := kv.data[key]
	kv.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores value under key and writes the file through.
func (kv *KV) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.data[key] = raw
	return kv.save()
}

// Delete removes key and writes the file through.
func (kv *KV) Delete(key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.data, key)
	return kv.save()
}

func (kv *KV) save() error {
	if kv.path == "" {
		return errors.New("kv: no path configured")
	}
	if err := os.MkdirAll(filepath.Dir(kv.path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(kv.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(kv.path, b, 0o600)
}
