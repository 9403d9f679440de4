package task

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/MarisaKirisame/mdo/internal/model"
)

// Store is a JSON-file-backed task collection. Every operation runs as a
// single read-normalize-mutate-persist session under one exclusive lock,
// including read-only listings, so no caller ever observes a half-reindexed
// forest. The file is the sole source of truth; nothing is cached between
// sessions.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &Store{path: path}, nil
}

func (s *Store) Path() string {
	return s.path
}

// loadLocked reads and normalizes the persisted document. A missing or
// blank file is an empty store; a non-array document is ErrCorruptStore.
func (s *Store) loadLocked() ([]*model.Task, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*model.Task{}, nil
		}
		return nil, err
	}
	// tolerate a UTF-8 BOM left by hand editing
	b = []byte(strings.TrimSpace(strings.TrimPrefix(string(b), "\ufeff")))
	if len(b) == 0 {
		return []*model.Task{}, nil
	}

	var shape any
	if err := json.Unmarshal(b, &shape); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	if _, ok := shape.([]any); !ok {
		return nil, ErrCorruptStore
	}

	var tasks []*model.Task
	if err := json.Unmarshal(b, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}

	return normalize(tasks), nil
}

func (s *Store) saveLocked(tasks []*model.Task) error {
	b, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

// normalize self-heals externally corrupted content before any operation
// uses it: records with no id are dropped, dangling parent references are
// coerced to top-level, then every sibling group is renumbered to the
// contiguous range 0..count-1.
func normalize(tasks []*model.Task) []*model.Task {
	kept := make([]*model.Task, 0, len(tasks))
	valid := make(map[model.TaskID]bool, len(tasks))
	for _, t := range tasks {
		if t == nil || t.ID == "" {
			continue
		}
		kept = append(kept, t)
		valid[t.ID] = true
	}
	for _, t := range kept {
		if t.ParentID != nil && (*t.ParentID == "" || !valid[*t.ParentID]) {
			t.ParentID = nil
		}
	}
	reindex(kept)
	return kept
}

// reindex renumbers each sibling group by current position, stably, so
// relative order survives the shift arithmetic of create/move/delete.
func reindex(tasks []*model.Task) {
	for _, siblings := range byParent(tasks) {
		sort.SliceStable(siblings, func(i, j int) bool {
			return siblings[i].Position < siblings[j].Position
		})
		for pos, t := range siblings {
			t.Position = pos
		}
	}
}

func byParent(tasks []*model.Task) map[model.TaskID][]*model.Task {
	groups := map[model.TaskID][]*model.Task{}
	for _, t := range tasks {
		key := model.TaskID("")
		if t.ParentID != nil {
			key = *t.ParentID
		}
		groups[key] = append(groups[key], t)
	}
	return groups
}

func siblingsOf(tasks []*model.Task, parentID *model.TaskID, exclude model.TaskID) []*model.Task {
	var out []*model.Task
	for _, t := range tasks {
		if t.ID == exclude {
			continue
		}
		if sameParent(t.ParentID, parentID) {
			out = append(out, t)
		}
	}
	return out
}

func sameParent(a, b *model.TaskID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func indexByID(tasks []*model.Task) map[model.TaskID]*model.Task {
	idx := make(map[model.TaskID]*model.Task, len(tasks))
	for _, t := range tasks {
		idx[t.ID] = t
	}
	return idx
}

// descendants is the closure of ids reachable by child links from rootID.
// The walk carries a visited set so malformed input can never loop it.
func descendants(tasks []*model.Task, rootID model.TaskID) map[model.TaskID]bool {
	children := map[model.TaskID][]model.TaskID{}
	for _, t := range tasks {
		if t.ParentID != nil {
			children[*t.ParentID] = append(children[*t.ParentID], t.ID)
		}
	}

	seen := map[model.TaskID]bool{}
	frontier := []model.TaskID{rootID}
	for len(frontier) > 0 {
		current := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		for _, childID := range children[current] {
			if !seen[childID] {
				seen[childID] = true
				frontier = append(frontier, childID)
			}
		}
	}
	return seen
}
