package task

import (
	"sort"

	"github.com/MarisaKirisame/mdo/internal/model"
)

// buildForest rebuilds the tree view from the flat collection: child lists
// are derived from parent references on every listing and never stored.
// Input must already be normalized, so sibling positions are contiguous.
func buildForest(tasks []*model.Task) []*model.TaskNode {
	return buildChildren(groupChildren(tasks), nil)
}

// buildSubtrees returns the ordered child subtrees of rootID.
func buildSubtrees(tasks []*model.Task, rootID model.TaskID) []*model.TaskNode {
	return buildChildren(groupChildren(tasks), &rootID)
}

func groupChildren(tasks []*model.Task) map[model.TaskID][]*model.Task {
	groups := byParent(tasks)
	for _, siblings := range groups {
		sort.SliceStable(siblings, func(i, j int) bool {
			return siblings[i].Position < siblings[j].Position
		})
	}
	return groups
}

func buildChildren(groups map[model.TaskID][]*model.Task, parentID *model.TaskID) []*model.TaskNode {
	key := model.TaskID("")
	if parentID != nil {
		key = *parentID
	}
	nodes := []*model.TaskNode{}
	for _, t := range groups[key] {
		id := t.ID
		nodes = append(nodes, &model.TaskNode{
			Task:     *t,
			Children: buildChildren(groups, &id),
		})
	}
	return nodes
}

// sortDue orders an agenda by (due, id) ascending so same-day items keep a
// stable order across runs.
func sortDue(tasks []model.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if c := tasks[i].Due.Compare(*tasks[j].Due); c != 0 {
			return c < 0
		}
		return tasks[i].ID < tasks[j].ID
	})
}
