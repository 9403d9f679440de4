package task

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarisaKirisame/mdo/internal/model"
	"github.com/MarisaKirisame/mdo/internal/when"
)

var testToday = when.MustDate(2025, time.April, 20)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "tasks.json"))
	require.NoError(t, err)
	return s
}

func mustCreate(t *testing.T, s *Store, title string, parentID *model.TaskID, position *int) model.Task {
	t.Helper()
	created, err := s.Create(title, parentID, position)
	require.NoError(t, err)
	return created
}

func intPtr(n int) *int { return &n }

// loadAll reads the persisted document back without going through the
// store, to check what actually hit disk.
func loadAll(t *testing.T, s *Store) []model.Task {
	t.Helper()
	b, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	var tasks []model.Task
	require.NoError(t, json.Unmarshal(b, &tasks))
	return tasks
}

func assertContiguousPositions(t *testing.T, s *Store) {
	t.Helper()
	groups := map[string][]int{}
	for _, task := range loadAll(t, s) {
		key := ""
		if task.ParentID != nil {
			key = string(*task.ParentID)
		}
		groups[key] = append(groups[key], task.Position)
	}
	for parent, positions := range groups {
		seen := make([]bool, len(positions))
		for _, p := range positions {
			require.GreaterOrEqual(t, p, 0, "parent %q", parent)
			require.Less(t, p, len(positions), "parent %q", parent)
			require.False(t, seen[p], "duplicate position %d under parent %q", p, parent)
			seen[p] = true
		}
	}
}

func TestCreate(t *testing.T) {
	s := newTestStore(t)

	a := mustCreate(t, s, "task a", nil, nil)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, 0, a.Position)
	assert.Nil(t, a.ParentID)
	assert.Equal(t, "task a", a.Title)

	// inserting at the head displaces existing siblings
	b := mustCreate(t, s, "task b", nil, intPtr(0))
	assert.Equal(t, 0, b.Position)

	forest, err := s.List(nil)
	require.NoError(t, err)
	require.Len(t, forest, 2)
	assert.Equal(t, b.ID, forest[0].ID)
	assert.Equal(t, a.ID, forest[1].ID)
	assertContiguousPositions(t, s)
}

func TestCreate_TrimsAndRejectsEmptyTitle(t *testing.T) {
	s := newTestStore(t)

	created := mustCreate(t, s, "  padded  ", nil, nil)
	assert.Equal(t, "padded", created.Title)

	_, err := s.Create("   ", nil, nil)
	assert.ErrorIs(t, err, ErrInvalid)

	forest, err := s.List(nil)
	require.NoError(t, err)
	assert.Len(t, forest, 1)
}

func TestCreate_MissingParent(t *testing.T) {
	s := newTestStore(t)
	missing := model.TaskID("nope")
	_, err := s.Create("x", &missing, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_PositionClamped(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "a", nil, nil)
	b := mustCreate(t, s, "b", nil, intPtr(99))
	assert.Equal(t, 1, b.Position)
	c := mustCreate(t, s, "c", nil, intPtr(-5))
	assert.Equal(t, 0, c.Position)
	assertContiguousPositions(t, s)
}

func TestDelete_RemovesSubtreeAndClosesGaps(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "a", nil, nil)
	c := mustCreate(t, s, "c", &a.ID, nil)
	d := mustCreate(t, s, "d", &a.ID, nil)
	grandchild := mustCreate(t, s, "gc", &c.ID, nil)

	require.NoError(t, s.Delete(c.ID))

	remaining := loadAll(t, s)
	ids := map[model.TaskID]model.Task{}
	for _, task := range remaining {
		ids[task.ID] = task
	}
	assert.NotContains(t, ids, c.ID)
	assert.NotContains(t, ids, grandchild.ID)
	assert.Contains(t, ids, a.ID)
	// D closed the gap left by C
	assert.Equal(t, 0, ids[d.ID].Position)
	assertContiguousPositions(t, s)

	// no dangling parent references survive
	for _, task := range remaining {
		if task.ParentID != nil {
			assert.Contains(t, ids, *task.ParentID)
		}
	}
}

func TestDelete_NotFound(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.Delete("missing"), ErrNotFound)
}

func TestReorder(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "a", nil, nil)
	b := mustCreate(t, s, "b", nil, nil)
	child := mustCreate(t, s, "child", &a.ID, nil)

	forest, err := s.Reorder([]model.TaskID{b.ID, a.ID})
	require.NoError(t, err)
	require.Len(t, forest, 2)
	assert.Equal(t, b.ID, forest[0].ID)
	assert.Equal(t, a.ID, forest[1].ID)
	require.Len(t, forest[1].Children, 1)
	assert.Equal(t, child.ID, forest[1].Children[0].ID)
	assertContiguousPositions(t, s)
}

func TestReorder_RejectsNonPermutations(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "a", nil, nil)
	b := mustCreate(t, s, "b", nil, nil)

	cases := map[string][]model.TaskID{
		"missing id":   {a.ID},
		"foreign id":   {a.ID, b.ID, "stranger"},
		"duplicate id": {a.ID, a.ID},
		"empty":        {},
	}
	for name, order := range cases {
		_, err := s.Reorder(order)
		assert.ErrorIs(t, err, ErrInvalid, name)
	}

	// state unchanged after every rejection
	forest, err := s.List(nil)
	require.NoError(t, err)
	require.Len(t, forest, 2)
	assert.Equal(t, a.ID, forest[0].ID)
	assert.Equal(t, b.ID, forest[1].ID)
}

func TestMove(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "a", nil, nil)
	b := mustCreate(t, s, "b", nil, nil)
	c := mustCreate(t, s, "c", &a.ID, nil)

	// reparent c under b
	forest, err := s.Move(c.ID, &b.ID, 0)
	require.NoError(t, err)
	require.Len(t, forest, 2)
	assert.Empty(t, forest[0].Children)
	require.Len(t, forest[1].Children, 1)
	assert.Equal(t, c.ID, forest[1].Children[0].ID)
	assertContiguousPositions(t, s)

	// promote to top-level at the head
	forest, err = s.Move(c.ID, nil, 0)
	require.NoError(t, err)
	require.Len(t, forest, 3)
	assert.Equal(t, c.ID, forest[0].ID)
	assertContiguousPositions(t, s)
}

func TestMove_WithinSameGroup(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "a", nil, nil)
	b := mustCreate(t, s, "b", nil, nil)
	c := mustCreate(t, s, "c", nil, nil)

	forest, err := s.Move(a.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, forest, 3)
	assert.Equal(t, b.ID, forest[0].ID)
	assert.Equal(t, c.ID, forest[1].ID)
	assert.Equal(t, a.ID, forest[2].ID)
	assertContiguousPositions(t, s)
}

func TestMove_RejectsSelfAndCycles(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "a", nil, nil)
	b := mustCreate(t, s, "b", &a.ID, nil)
	c := mustCreate(t, s, "c", &b.ID, nil)

	_, err := s.Move(a.ID, &a.ID, 0)
	assert.ErrorIs(t, err, ErrInvalid)

	// destination inside a's own subtree, at any depth
	_, err = s.Move(a.ID, &b.ID, 0)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = s.Move(a.ID, &c.ID, 0)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.Move("missing", nil, 0)
	assert.ErrorIs(t, err, ErrNotFound)
	missing := model.TaskID("missing")
	_, err = s.Move(a.ID, &missing, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	// nothing changed
	forest, err := s.List(nil)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, a.ID, forest[0].ID)
}

func TestComplete_OneShot(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "a", nil, nil)
	b := mustCreate(t, s, "b", nil, nil)

	result, err := s.Complete(a.ID, testToday)
	require.NoError(t, err)
	assert.False(t, result.Rescheduled)
	assert.Equal(t, a.ID, result.Task.ID)

	remaining := loadAll(t, s)
	require.Len(t, remaining, 1)
	assert.Equal(t, b.ID, remaining[0].ID)
	assert.Equal(t, 0, remaining[0].Position)
}

func TestComplete_RecurringReschedules(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "water plants", nil, nil)
	due := when.MustDate(2025, time.April, 20)
	_, err := s.SetSchedule(a.ID, &due, 1)
	require.NoError(t, err)

	result, err := s.Complete(a.ID, testToday)
	require.NoError(t, err)
	assert.True(t, result.Rescheduled)
	require.NotNil(t, result.Task.Due)
	assert.Equal(t, "2025-04-21", result.Task.Due.String())

	// the task persists, rescheduled
	remaining := loadAll(t, s)
	require.Len(t, remaining, 1)
	require.NotNil(t, remaining[0].Due)
	assert.Equal(t, "2025-04-21", remaining[0].Due.String())
}

func TestComplete_RecurringWithoutDueAnchorsOnToday(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "a", nil, nil)
	_, err := s.SetRecurrence(a.ID, 3)
	require.NoError(t, err)

	result, err := s.Complete(a.ID, testToday)
	require.NoError(t, err)
	assert.True(t, result.Rescheduled)
	assert.Equal(t, "2025-04-23", result.Task.Due.String())
}

func TestComplete_RejectsTaskWithSubtasks(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "a", nil, nil)
	mustCreate(t, s, "sub", &a.ID, nil)

	_, err := s.Complete(a.ID, testToday)
	assert.ErrorIs(t, err, ErrInvalid)

	// both tasks untouched
	assert.Len(t, loadAll(t, s), 2)

	_, err = s.Complete("missing", testToday)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetSchedule(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "a", nil, nil)

	due := when.MustDate(2025, time.May, 1)
	updated, err := s.SetSchedule(a.ID, &due, 7)
	require.NoError(t, err)
	require.NotNil(t, updated.Due)
	assert.Equal(t, "2025-05-01", updated.Due.String())
	assert.Equal(t, model.Recurrence(7), updated.Recur)

	cleared, err := s.SetSchedule(a.ID, nil, 0)
	require.NoError(t, err)
	assert.Nil(t, cleared.Due)
	assert.Equal(t, model.Recurrence(0), cleared.Recur)

	_, err = s.SetSchedule(a.ID, &due, -1)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = s.SetSchedule("missing", &due, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDueOn(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "overdue", nil, nil)
	b := mustCreate(t, s, "today", nil, nil)
	c := mustCreate(t, s, "future", nil, nil)
	mustCreate(t, s, "undated", nil, nil)

	overdue := when.MustDate(2025, time.April, 10)
	today := testToday
	future := when.MustDate(2025, time.April, 25)
	_, err := s.SetSchedule(a.ID, &overdue, 0)
	require.NoError(t, err)
	_, err = s.SetSchedule(b.ID, &today, 0)
	require.NoError(t, err)
	_, err = s.SetSchedule(c.ID, &future, 0)
	require.NoError(t, err)

	due, err := s.DueOn(testToday)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, a.ID, due[0].ID)
	assert.Equal(t, b.ID, due[1].ID)
}

func TestDueOn_TiesOrderedByID(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "a", nil, nil)
	b := mustCreate(t, s, "b", nil, nil)
	day := testToday
	_, err := s.SetSchedule(a.ID, &day, 0)
	require.NoError(t, err)
	_, err = s.SetSchedule(b.ID, &day, 0)
	require.NoError(t, err)

	due, err := s.DueOn(testToday)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.LessOrEqual(t, string(due[0].ID), string(due[1].ID))
}

func TestList_Subtree(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "a", nil, nil)
	b := mustCreate(t, s, "b", &a.ID, nil)
	mustCreate(t, s, "c", &b.ID, nil)

	children, err := s.List(&a.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, b.ID, children[0].ID)
	require.Len(t, children[0].Children, 1)

	_, err = s.List(&[]model.TaskID{"missing"}[0])
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "a", nil, nil)
	require.NoError(t, s.Clear())
	forest, err := s.List(nil)
	require.NoError(t, err)
	assert.Empty(t, forest)
}

func TestLoad_SelfHealsCorruptedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")

	// hand-edited document: dangling parent, gapped and duplicated
	// positions, legacy string recurrence
	doc := `[
		{"id": "x", "title": "x", "parent_id": "ghost", "position": 7, "created_at": 1, "due": null, "recurrence": "daily"},
		{"id": "y", "title": "y", "parent_id": null, "position": 7, "created_at": 2, "due": "2025-04-20", "recurrence": "3"},
		{"id": "z", "title": "z", "parent_id": null, "position": 2, "created_at": 3, "due": null, "recurrence": "someday"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s, err := NewStore(path)
	require.NoError(t, err)

	forest, err := s.List(nil)
	require.NoError(t, err)
	require.Len(t, forest, 3)

	byID := map[model.TaskID]*model.TaskNode{}
	for _, n := range forest {
		byID[n.ID] = n
	}
	// dangling parent coerced to top-level
	assert.Nil(t, byID["x"].ParentID)
	// positions renumbered preserving relative order (z before y and x)
	assert.Equal(t, 0, byID["z"].Position)
	// legacy recurrence spellings normalized, unknown tokens dropped
	assert.Equal(t, model.Recurrence(1), byID["x"].Recur)
	assert.Equal(t, model.Recurrence(3), byID["y"].Recur)
	assert.Equal(t, model.Recurrence(0), byID["z"].Recur)
}

func TestLoad_CorruptStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tasks": []}`), 0o644))

	s, err := NewStore(path)
	require.NoError(t, err)

	_, err = s.List(nil)
	assert.ErrorIs(t, err, ErrCorruptStore)

	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))
	_, err = s.List(nil)
	assert.ErrorIs(t, err, ErrCorruptStore)
}

func TestLoad_MissingAndEmptyFile(t *testing.T) {
	s := newTestStore(t)
	forest, err := s.List(nil)
	require.NoError(t, err)
	assert.Empty(t, forest)

	require.NoError(t, os.WriteFile(s.Path(), []byte("  \n"), 0o644))
	forest, err = s.List(nil)
	require.NoError(t, err)
	assert.Empty(t, forest)
}
