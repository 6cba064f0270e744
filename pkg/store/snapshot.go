package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
	"github.com/redgraph/chainmap/pkg/chain"
)

// snapshot is the on-disk form of a MemoryStore: the chains plus the
// per-project creation order
type snapshot struct {
	Version int                    `json:"version"`
	Chains  []*chain.Draft         `json:"chains"`
	Order   map[string][]string    `json:"order"`
}

const snapshotVersion = 1

// SaveSnapshot writes a snappy-compressed JSON snapshot of the store.
// The write goes through a temp file and rename so a crash mid-write
// never corrupts the previous snapshot.
func (s *MemoryStore) SaveSnapshot(path string) error {
	s.mu.RLock()
	snap := snapshot{
		Version: snapshotVersion,
		Chains:  make([]*chain.Draft, 0, len(s.chains)),
		Order:   make(map[string][]string, len(s.byProj)),
	}
	for _, stored := range s.chains {
		snap.Chains = append(snap.Chains, stored.Clone())
	}
	for proj, ids := range s.byProj {
		snap.Order[proj] = append([]string(nil), ids...)
	}
	s.mu.RUnlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	compressed := snappy.Encode(nil, data)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to finalize snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot replaces the store contents with a previously saved
// snapshot. A missing file is not an error; the store starts empty.
func (s *MemoryStore) LoadSnapshot(path string) error {
	compressed, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return fmt.Errorf("failed to decompress snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}

	chains := make(map[string]*chain.Draft, len(snap.Chains))
	for _, stored := range snap.Chains {
		stored.Normalize()
		chains[stored.ID] = stored
	}

	s.mu.Lock()
	s.chains = chains
	s.byProj = snap.Order
	if s.byProj == nil {
		s.byProj = make(map[string][]string)
	}
	s.mu.Unlock()
	return nil
}
