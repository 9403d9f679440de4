package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MarisaKirisame/mdo/internal/model"
	"github.com/MarisaKirisame/mdo/internal/when"
)

// List returns the ordered forest, or the ordered child subtrees of rootID
// when given. Read-only; the persisted document is untouched.
func (s *Store) List(rootID *model.TaskID) ([]*model.TaskNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	if rootID == nil {
		return buildForest(tasks), nil
	}
	if indexByID(tasks)[*rootID] == nil {
		return nil, ErrNotFound
	}
	return buildSubtrees(tasks, *rootID), nil
}

// Create inserts a new task among the intended siblings. A nil position
// appends; an out-of-range position is clamped, not rejected.
func (s *Store) Create(title string, parentID *model.TaskID, position *int) (model.Task, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return model.Task{}, fmt.Errorf("%w: task title must not be empty", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.loadLocked()
	if err != nil {
		return model.Task{}, err
	}
	if parentID != nil && indexByID(tasks)[*parentID] == nil {
		return model.Task{}, ErrNotFound
	}

	siblings := siblingsOf(tasks, parentID, "")
	insertAt := len(siblings)
	if position != nil {
		insertAt = clamp(*position, len(siblings))
	}
	for _, t := range siblings {
		if t.Position >= insertAt {
			t.Position++
		}
	}

	created := &model.Task{
		ID:        model.TaskID(strings.ReplaceAll(uuid.NewString(), "-", "")),
		Title:     trimmed,
		ParentID:  parentID,
		Position:  insertAt,
		CreatedAt: float64(time.Now().UnixNano()) / float64(time.Second),
	}
	tasks = append(tasks, created)
	reindex(tasks)
	if err := s.saveLocked(tasks); err != nil {
		return model.Task{}, err
	}
	return *created, nil
}

// Delete removes a task and its whole descendant closure in one pass.
func (s *Store) Delete(id model.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.loadLocked()
	if err != nil {
		return err
	}
	if indexByID(tasks)[id] == nil {
		return ErrNotFound
	}

	doomed := descendants(tasks, id)
	doomed[id] = true

	remaining := tasks[:0]
	for _, t := range tasks {
		if !doomed[t.ID] {
			remaining = append(remaining, t)
		}
	}
	reindex(remaining)
	return s.saveLocked(remaining)
}

// Reorder rewrites the positions of the top-level group. The request must
// name every current top-level task exactly once; anything else is
// rejected with no side effect.
func (s *Store) Reorder(order []model.TaskID) ([]*model.TaskNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	var topLevel []*model.Task
	for _, t := range tasks {
		if t.ParentID == nil {
			topLevel = append(topLevel, t)
		}
	}

	ranks := make(map[model.TaskID]int, len(order))
	for i, id := range order {
		if _, dup := ranks[id]; dup {
			return nil, fmt.Errorf("%w: reorder request must include each top-level task exactly once", ErrInvalid)
		}
		ranks[id] = i
	}
	if len(ranks) != len(topLevel) {
		return nil, fmt.Errorf("%w: reorder request must include each top-level task exactly once", ErrInvalid)
	}
	for _, t := range topLevel {
		if _, ok := ranks[t.ID]; !ok {
			return nil, fmt.Errorf("%w: reorder request must include each top-level task exactly once", ErrInvalid)
		}
	}

	for _, t := range topLevel {
		t.Position = ranks[t.ID]
	}
	reindex(tasks)
	if err := s.saveLocked(tasks); err != nil {
		return nil, err
	}
	return buildForest(tasks), nil
}

// Move reattaches a task under a new parent at the given position. The
// destination may not be the task itself or anything inside its own
// subtree; either would corrupt the forest.
func (s *Store) Move(id model.TaskID, parentID *model.TaskID, position int) ([]*model.TaskNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	idx := indexByID(tasks)

	target := idx[id]
	if target == nil {
		return nil, ErrNotFound
	}
	if parentID != nil {
		if idx[*parentID] == nil {
			return nil, ErrNotFound
		}
		if *parentID == id {
			return nil, fmt.Errorf("%w: task cannot be its own parent", ErrInvalid)
		}
		if descendants(tasks, id)[*parentID] {
			return nil, fmt.Errorf("%w: cannot move a task inside its own subtree", ErrInvalid)
		}
	}

	// close the gap in the old sibling group
	for _, t := range tasks {
		if sameParent(t.ParentID, target.ParentID) && t.Position > target.Position {
			t.Position--
		}
	}

	target.ParentID = parentID
	siblings := siblingsOf(tasks, parentID, id)
	insertAt := clamp(position, len(siblings))
	for _, t := range siblings {
		if t.Position >= insertAt {
			t.Position++
		}
	}
	target.Position = insertAt

	reindex(tasks)
	if err := s.saveLocked(tasks); err != nil {
		return nil, err
	}
	return buildForest(tasks), nil
}

// CompleteResult reports what completing a task did: recurring tasks are
// rescheduled in place, one-shot tasks are removed.
type CompleteResult struct {
	Task        model.Task `json:"task"`
	Rescheduled bool       `json:"rescheduled"`
}

// Complete finishes a task. A task that still has subtasks cannot be
// completed; the subtasks must be completed or relocated first. Recurring
// tasks advance their due date by the recurrence interval instead of being
// deleted.
func (s *Store) Complete(id model.TaskID, today when.Date) (CompleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.loadLocked()
	if err != nil {
		return CompleteResult{}, err
	}
	target := indexByID(tasks)[id]
	if target == nil {
		return CompleteResult{}, ErrNotFound
	}
	if len(descendants(tasks, id)) > 0 {
		return CompleteResult{}, fmt.Errorf("%w: cannot complete a task with subtasks", ErrInvalid)
	}

	if target.IsRecurring() {
		next := when.NextDue(target.Due, int(target.Recur), today)
		target.Due = &next
		if err := s.saveLocked(tasks); err != nil {
			return CompleteResult{}, err
		}
		return CompleteResult{Task: *target, Rescheduled: true}, nil
	}

	remaining := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			remaining = append(remaining, t)
		}
	}
	reindex(remaining)
	if err := s.saveLocked(remaining); err != nil {
		return CompleteResult{}, err
	}
	return CompleteResult{Task: *target, Rescheduled: false}, nil
}

// SetSchedule assigns or clears a task's due date and recurrence together,
// as produced by resolving a date expression. A nil due with zero
// recurrence clears the schedule.
func (s *Store) SetSchedule(id model.TaskID, due *when.Date, recur model.Recurrence) (model.Task, error) {
	if recur < 0 {
		return model.Task{}, fmt.Errorf("%w: recurrence must be a positive day count", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.loadLocked()
	if err != nil {
		return model.Task{}, err
	}
	target := indexByID(tasks)[id]
	if target == nil {
		return model.Task{}, ErrNotFound
	}

	target.Due = due
	target.Recur = recur
	if err := s.saveLocked(tasks); err != nil {
		return model.Task{}, err
	}
	return *target, nil
}

// SetRecurrence assigns or clears just the recurrence interval; days == 0
// clears it.
func (s *Store) SetRecurrence(id model.TaskID, days int) (model.Task, error) {
	if days < 0 {
		return model.Task{}, fmt.Errorf("%w: recurrence must be a positive day count", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.loadLocked()
	if err != nil {
		return model.Task{}, err
	}
	target := indexByID(tasks)[id]
	if target == nil {
		return model.Task{}, ErrNotFound
	}

	target.Recur = model.Recurrence(days)
	if err := s.saveLocked(tasks); err != nil {
		return model.Task{}, err
	}
	return *target, nil
}

// DueOn returns every task due on or before the given day, ordered by
// (due, id) ascending. Read-only.
func (s *Store) DueOn(today when.Date) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	due := []model.Task{}
	for _, t := range tasks {
		if t.Due != nil && !t.Due.After(today) {
			due = append(due, *t)
		}
	}
	sortDue(due)
	return due, nil
}

// Clear drops every task.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked([]*model.Task{})
}

func clamp(position, siblingCount int) int {
	if position < 0 {
		return 0
	}
	if position > siblingCount {
		return siblingCount
	}
	return position
}
