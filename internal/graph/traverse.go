// Package graph provides the exec-flow traversal primitives shared by the
// detectors: forward reach counting and backward context classification.
// Both walks are guarded by a visited set, so they terminate on graphs with
// cycles (loops, recursive macro instantiation).
package graph

import "github.com/bplint/bplint/pkg/models"

// CountConnected returns the number of nodes reachable from start by
// following output exec-pin connections, including start itself. Each node
// is counted once regardless of how many paths lead to it.
func CountConnected(start *models.Node) int {
	visited := make(map[*models.Node]struct{})
	return countConnected(start, visited)
}

func countConnected(n *models.Node, visited map[*models.Node]struct{}) int {
	if n == nil {
		return 0
	}
	if _, seen := visited[n]; seen {
		return 0
	}
	visited[n] = struct{}{}

	count := 1
	for _, pin := range n.Pins {
		if pin.Direction != models.PinOutput || pin.Kind != models.PinExec {
			continue
		}
		for _, link := range pin.Links {
			count += countConnected(link.Node(), visited)
		}
	}
	return count
}

// InContext walks backward along input exec-pin connections from n and
// reports whether pred matches any node on the way, n included. The visited
// set is fresh per call; repeated calls do not share state.
func InContext(n *models.Node, pred func(*models.Node) bool) bool {
	visited := make(map[*models.Node]struct{})
	return inContext(n, pred, visited)
}

func inContext(n *models.Node, pred func(*models.Node) bool, visited map[*models.Node]struct{}) bool {
	if n == nil {
		return false
	}
	if _, seen := visited[n]; seen {
		return false
	}
	visited[n] = struct{}{}

	if pred(n) {
		return true
	}

	for _, pin := range n.Pins {
		if pin.Direction != models.PinInput || pin.Kind != models.PinExec {
			continue
		}
		for _, link := range pin.Links {
			if inContext(link.Node(), pred, visited) {
				return true
			}
		}
	}
	return false
}
