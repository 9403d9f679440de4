package model

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/MarisaKirisame/mdo/internal/when"
)

type TaskID string

// Recurrence is a day interval between automatic reschedulings; 0 means
// one-shot. Old store files spelled it as "daily"/"everyday"/numeric
// strings, so loading stays lenient: unknown tokens decode to 0.
type Recurrence int

func (r Recurrence) MarshalJSON() ([]byte, error) {
	if r == 0 {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(r))), nil
}

func (r *Recurrence) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		*r = 0
		return nil
	}
	if s[0] == '"' {
		var token string
		if err := json.Unmarshal(b, &token); err != nil {
			return err
		}
		*r = Recurrence(when.LegacyRecurrence(token))
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		*r = 0
		return nil
	}
	*r = Recurrence(n)
	return nil
}

// Task is the persisted record. Order within the store document is not
// meaningful; ParentID and Position alone define structure and ordering.
// Child links are derived from the flat collection, never stored.
type Task struct {
	ID        TaskID     `json:"id"`
	Title     string     `json:"title"`
	ParentID  *TaskID    `json:"parent_id"`
	Position  int        `json:"position"`
	CreatedAt float64    `json:"created_at"`
	Due       *when.Date `json:"due"`
	Recur     Recurrence `json:"recurrence"`
}

func (t *Task) IsSubtask() bool {
	return t.ParentID != nil
}

func (t *Task) IsRecurring() bool {
	return t.Recur > 0
}

// TaskNode is the tree view of a task: the same record plus its ordered
// children, rebuilt from the flat collection on every listing.
type TaskNode struct {
	Task
	Children []*TaskNode `json:"children"`
}
