package layerrenamer

import (
	"sort"
)

const (
	ButtonComponent       = "Button"
	ServiceTilesComponent = "Elements / Service Tiles"
	ListItemComponent     = "List item"

	// CustomCategory buckets renames that did not come from a fixed mapping
	// entry in RenameReport.Counts.
	CustomCategory = "Custom"
)

// ComponentMapping maps a component set name to the name its instances are
// renamed to.
type ComponentMapping map[string]string

// NewComponentMapping builds the fixed mapping for the three well known
// component sets.
func NewComponentMapping(buttonName, serviceTilesName, listItemName string) ComponentMapping {
	return ComponentMapping{
		ButtonComponent:       buttonName,
		ServiceTilesComponent: serviceTilesName,
		ListItemComponent:     listItemName,
	}
}

// ResolveName returns the new name for instances of groupName. Custom rules are
// scanned in order and the first one naming groupName wins, whatever its new
// name is. The fixed mapping is only consulted when no custom rule matched.
func ResolveName(groupName string, mapping ComponentMapping, customRenames []CustomRename) (string, bool) {
	for _, rule := range customRenames {
		if rule.Name == "" {
			continue
		}
		if rule.Name == groupName {
			return rule.NewName, true
		}
	}

	if newName, ok := mapping[groupName]; ok {
		return newName, true
	}

	return "", false
}

// RenameTree renames every instance under roots that a rule resolves a name
// for. Roots are processed in order and each tree is walked depth-first in
// pre-order. Names are written as nodes are visited; Items and Actions line up
// one to one. A node reachable from more than one root is renamed only the
// first time it is reached.
func RenameTree(roots []*Node, mapping ComponentMapping, customRenames []CustomRename) RenameResult {
	result := RenameResult{
		Items:   []RenamedItem{},
		Actions: []RenameAction{},
	}

	visited := make(map[*Node]bool)
	for _, root := range roots {
		walk(root, func(node *Node) bool {
			if visited[node] {
				return true
			}
			visited[node] = true

			groupName, ok := Classify(node)
			if !ok {
				return true
			}

			newName, ok := ResolveName(groupName, mapping, customRenames)
			if !ok {
				return true
			}

			oldName := node.Name
			node.Name = newName

			result.Items = append(result.Items, RenamedItem{
				ID:           node.ID,
				OriginalName: oldName,
				NewName:      newName,
				Type:         groupName,
			})
			result.Actions = append(result.Actions, RenameAction{
				Node:    node,
				OldName: oldName,
				NewName: newName,
			})
			return true
		})
	}

	return result
}

// AggregateInstances counts the instances under root per component set name.
// The result is sorted by count, most used first, then by name.
func AggregateInstances(root *Node) []UniqueInstance {
	counts := make(map[string]int)

	walk(root, func(node *Node) bool {
		if groupName, ok := Classify(node); ok {
			counts[groupName]++
		}
		return true
	})

	result := make([]UniqueInstance, 0, len(counts))
	for name, count := range counts {
		result = append(result, UniqueInstance{Name: name, Count: count})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Name < result[j].Name
	})

	return result
}

// FindInstancesOf returns every instance under root whose component set is
// named groupName, in pre-order.
func FindInstancesOf(groupName string, root *Node) []*Node {
	var matches []*Node

	walk(root, func(node *Node) bool {
		if name, ok := Classify(node); ok && name == groupName {
			matches = append(matches, node)
		}
		return true
	})

	return matches
}

// countByCategory buckets renamed items under their fixed mapping name, or
// CustomCategory for anything else.
func countByCategory(items []RenamedItem) map[string]int {
	counts := map[string]int{
		ButtonComponent:       0,
		ServiceTilesComponent: 0,
		ListItemComponent:     0,
		CustomCategory:        0,
	}

	for _, item := range items {
		switch item.Type {
		case ButtonComponent, ServiceTilesComponent, ListItemComponent:
			counts[item.Type]++
		default:
			counts[CustomCategory]++
		}
	}

	return counts
}
