package layerrenamer

// Classify reports the component set name of an instance node. Nodes that are
// not instances, or whose component or component set cannot be resolved, are
// reported as not being instances.
func Classify(node *Node) (string, bool) {
	if node == nil || node.Type != KindInstance {
		return "", false
	}
	if node.MainComponent == nil || node.MainComponent.Parent == nil {
		return "", false
	}
	name := node.MainComponent.Parent.Name
	if name == "" {
		return "", false
	}
	return name, true
}

// walk visits root and its descendants in depth-first pre-order. It uses an
// explicit stack so that deep trees are not bounded by the call stack.
// Returning false from visit stops the walk.
func walk(root *Node, visit func(*Node) bool) {
	if root == nil {
		return
	}

	stack := []*Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !visit(node) {
			return
		}

		for i := len(node.Children) - 1; i >= 0; i-- {
			if node.Children[i] != nil {
				stack = append(stack, node.Children[i])
			}
		}
	}
}
