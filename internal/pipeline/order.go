package pipeline

import (
	"container/heap"
	"slices"

	"github.com/google/uuid"

	"github.com/roach88/rea/internal/plugin"
)

// Build validates the topology and computes the execution order. It fails
// with ErrCodeCyclicDependency if any connections form a cycle, even one no
// baseline step needs.
func (p *Pipeline) Build() error {
	_, err := p.ExecutionOrder()
	return err
}

// ExecutionOrder returns, per baseline step, the instance ids a run from
// step 0 executes: the Extensions the step needs that no earlier step
// already ran (in dependency order), then the step's Renders, then its App.
//
// The result is cached until the topology changes.
func (p *Pipeline) ExecutionOrder() ([][]uuid.UUID, error) {
	if p.order == nil {
		order, err := p.computeOrder(0)
		if err != nil {
			return nil, err
		}
		p.order = order
	}
	out := make([][]uuid.UUID, len(p.order))
	for i, s := range p.order {
		out[i] = slices.Clone(s)
	}
	return out, nil
}

// computeOrder builds the per-step order for a run that starts at step
// from. Element i of the result belongs to baseline step from+i.
func (p *Pipeline) computeOrder(from int) ([][]uuid.UUID, error) {
	if _, err := p.kahn(p.sortedInstances()); err != nil {
		return nil, err
	}
	if err := p.verifyBaseline(p.baseline); err != nil {
		return nil, err
	}

	scheduled := make(map[uuid.UUID]bool)
	orders := make([][]uuid.UUID, 0, len(p.baseline)-from)
	for i := from; i < len(p.baseline); i++ {
		step := p.baseline[i]
		targets := append(slices.Clone(step.Renders), step.App)

		needed := p.neededExtensions(targets, scheduled)
		ordered, err := p.kahn(needed)
		if err != nil {
			return nil, err
		}

		stepOrder := append(ordered, targets...)
		for _, id := range stepOrder {
			if scheduled[id] {
				return nil, newError(ErrCodeDuplicateSchedule, id, "step %d schedules an instance an earlier step already runs", i)
			}
			scheduled[id] = true
		}
		orders = append(orders, stepOrder)

		p.logger.Debug("step order computed", "step", i, "instances", len(stepOrder))
	}
	return orders, nil
}

// neededExtensions walks connections backwards from targets and collects
// every Extension they transitively depend on, skipping ones already
// scheduled. Result is in registration order.
func (p *Pipeline) neededExtensions(targets []uuid.UUID, scheduled map[uuid.UUID]bool) []*instance {
	isTarget := make(map[uuid.UUID]bool, len(targets))
	for _, t := range targets {
		isTarget[t] = true
	}

	found := make(map[uuid.UUID]*instance)
	stack := slices.Clone(targets)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, src := range p.upstream(id) {
			in := p.instances[src]
			if in == nil || in.plugin.Class() != plugin.ClassExtension {
				continue
			}
			if scheduled[src] || isTarget[src] || found[src] != nil {
				continue
			}
			found[src] = in
			stack = append(stack, src)
		}
	}

	out := make([]*instance, 0, len(found))
	for _, in := range found {
		out = append(out, in)
	}
	slices.SortFunc(out, func(a, b *instance) int { return int(a.seq - b.seq) })
	return out
}

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// kahn topologically sorts nodes using the connections between them.
// nodes must be in registration order; among ready nodes the one registered
// first is always taken next, which makes the result deterministic.
//
// If a cycle remains, no order is returned and the error lists the nodes
// that sit on or between cycles.
func (p *Pipeline) kahn(nodes []*instance) ([]uuid.UUID, error) {
	index := make(map[uuid.UUID]int, len(nodes))
	for i, n := range nodes {
		index[n.id] = i
	}

	outgoing := make([][]int, len(nodes))
	indeg := make([]int, len(nodes))
	type edge struct{ from, to int }
	seen := make(map[edge]bool)
	for _, c := range p.connections {
		from, okFrom := index[c.From.Instance]
		to, okTo := index[c.To.Instance]
		if !okFrom || !okTo {
			continue
		}
		e := edge{from, to}
		if seen[e] {
			continue
		}
		seen[e] = true
		outgoing[from] = append(outgoing[from], to)
		indeg[to]++
	}

	ready := &intMinHeap{}
	for i, d := range indeg {
		if d == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]uuid.UUID, 0, len(nodes))
	done := make([]bool, len(nodes))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(int)
		out = append(out, nodes[n].id)
		done[n] = true
		for _, m := range outgoing[n] {
			indeg[m]--
			if indeg[m] == 0 {
				heap.Push(ready, m)
			}
		}
	}

	if len(out) == len(nodes) {
		return out, nil
	}
	return nil, NewCycleError(cycleNodes(nodes, outgoing, done))
}

// cycleNodes trims the nodes Kahn could not order down to those that also
// have a path onward into the remaining set, which drops pure downstream
// victims of a cycle.
func cycleNodes(nodes []*instance, outgoing [][]int, done []bool) []uuid.UUID {
	remaining := make([]bool, len(nodes))
	outdeg := make([]int, len(nodes))
	for i := range nodes {
		remaining[i] = !done[i]
	}
	incoming := make([][]int, len(nodes))
	for from, tos := range outgoing {
		if !remaining[from] {
			continue
		}
		for _, to := range tos {
			if remaining[to] {
				outdeg[from]++
				incoming[to] = append(incoming[to], from)
			}
		}
	}

	var queue []int
	for i := range nodes {
		if remaining[i] && outdeg[i] == 0 {
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		remaining[n] = false
		for _, from := range incoming[n] {
			outdeg[from]--
			if outdeg[from] == 0 && remaining[from] {
				queue = append(queue, from)
			}
		}
	}

	var out []uuid.UUID
	for i, n := range nodes {
		if remaining[i] {
			out = append(out, n.id)
		}
	}
	return out
}
