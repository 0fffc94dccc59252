package query

import (
	"context"
	"sync"
)

// Plan is what a node fetches given the current state of its dependencies.
type Plan[T any] struct {
	Key   Key
	Fetch func(context.Context) (T, error)
}

// Dependency is anything a node can wait on before deciding its own plan.
type Dependency interface {
	Name() string
	settle(ctx context.Context)
}

// Node is one read in a dependency graph. Its plan function returns false
// while the node is not runnable, typically because an upstream value is
// missing; a node that is not runnable stays idle and issues no request.
type Node[T any] struct {
	client *Client
	name   string
	deps   []Dependency
	plan   func() (Plan[T], bool)
}

func NewNode[T any](c *Client, name string, deps []Dependency, plan func() (Plan[T], bool)) *Node[T] {
	return &Node[T]{client: c, name: name, deps: deps, plan: plan}
}

func (n *Node[T]) Name() string { return n.name }

// Key returns the node's current key, or nil when it is not runnable.
func (n *Node[T]) Key() Key {
	p, ok := n.plan()
	if !ok {
		return nil
	}
	return p.Key
}

// Peek reports the cached state for the node's current key without
// starting a fetch.
func (n *Node[T]) Peek() Snapshot[T] {
	p, ok := n.plan()
	if !ok {
		return Snapshot[T]{Status: StatusIdle}
	}
	return Peek[T](n.client, p.Key)
}

// Resolve waits for the dependencies, then for the node itself, bounded by
// ctx. On timeout the returned snapshot is still pending.
func (n *Node[T]) Resolve(ctx context.Context) Snapshot[T] {
	for _, d := range n.deps {
		d.settle(ctx)
	}
	p, ok := n.plan()
	if !ok {
		return Snapshot[T]{Status: StatusIdle}
	}
	return Await(ctx, n.client, p.Key, p.Fetch)
}

func (n *Node[T]) settle(ctx context.Context) {
	n.Resolve(ctx)
}

// ResolveAll settles independent nodes concurrently so that a slow or
// failing sibling does not hold up the others.
func ResolveAll(ctx context.Context, deps ...Dependency) {
	var wg sync.WaitGroup
	for _, d := range deps {
		wg.Add(1)
		go func(d Dependency) {
			defer wg.Done()
			d.settle(ctx)
		}(d)
	}
	wg.Wait()
}
