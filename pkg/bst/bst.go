// Package bst implements an insert-only binary search tree whose nodes live in
// an arena and reference each other through integer handles.
package bst

import (
	"cmp"

	"github.com/cockroachdb/errors"
	"github.com/emirpasic/gods/v2/queues/arrayqueue"
	"github.com/emirpasic/gods/v2/stacks/arraystack"

	"github.com/Sumatoshi-tech/treewalk/pkg/safeconv"
)

// nilNode is the reserved handle meaning "no node". Slot zero of the arena
// is never handed out.
const nilNode uint32 = 0

// maxNode is the first handle that can no longer be allocated.
const maxNode = safeconv.MaxUint32

type node[K cmp.Ordered] struct {
	key   K
	left  uint32
	right uint32
}

// Tree is a binary search tree over unique keys.
//
// Every key in a node's left subtree is strictly less than the node's key,
// and every key in its right subtree is strictly greater. Nodes are never
// removed or restructured once attached.
//
// A Tree is not safe for concurrent mutation.
type Tree[K cmp.Ordered] struct {
	// Node arena; storage[0] is the nilNode placeholder.
	storage []node[K]

	// Root handle, nilNode for an empty tree.
	root uint32

	// Number of nodes under root, including the root.
	count int
}

// New creates a tree and inserts keys in the given order.
// Duplicate keys are ignored.
func New[K cmp.Ordered](keys ...K) *Tree[K] {
	tree := &Tree[K]{storage: make([]node[K], 1, len(keys)+1), root: nilNode, count: 0}

	for _, key := range keys {
		tree.Insert(key)
	}

	return tree
}

// Len returns the number of keys stored in the tree.
func (tree *Tree[K]) Len() int {
	return tree.count
}

// Insert adds key to the tree. If an equal key is already present the tree
// is left untouched and false is returned.
func (tree *Tree[K]) Insert(key K) bool {
	if tree.root == nilNode {
		tree.root = tree.malloc(key)

		return true
	}

	cur := tree.root

	for {
		nd := &tree.storage[cur]

		switch cmp.Compare(key, nd.key) {
		case 0:
			return false
		case -1:
			if nd.left == nilNode {
				// malloc may grow the arena, so nd must not be reused afterwards.
				child := tree.malloc(key)
				tree.storage[cur].left = child

				return true
			}

			cur = nd.left
		default:
			if nd.right == nilNode {
				child := tree.malloc(key)
				tree.storage[cur].right = child

				return true
			}

			cur = nd.right
		}
	}
}

// Contains reports whether key is stored in the tree.
func (tree *Tree[K]) Contains(key K) bool {
	cur := tree.root

	for cur != nilNode {
		nd := &tree.storage[cur]

		switch cmp.Compare(key, nd.key) {
		case 0:
			return true
		case -1:
			cur = nd.left
		default:
			cur = nd.right
		}
	}

	return false
}

// Height returns the number of levels in the tree. An empty tree has height 0.
func (tree *Tree[K]) Height() int {
	if tree.root == nilNode {
		return 0
	}

	type level struct {
		node  uint32
		depth int
	}

	height := 0
	stack := arraystack.New[level]()
	stack.Push(level{node: tree.root, depth: 1})

	for !stack.Empty() {
		top, _ := stack.Pop()
		height = max(height, top.depth)

		nd := &tree.storage[top.node]
		if nd.left != nilNode {
			stack.Push(level{node: nd.left, depth: top.depth + 1})
		}

		if nd.right != nilNode {
			stack.Push(level{node: nd.right, depth: top.depth + 1})
		}
	}

	return height
}

// BFS returns the keys in level order: increasing depth, left before right
// within a level.
func (tree *Tree[K]) BFS() []K {
	result := make([]K, 0, tree.count)
	if tree.root == nilNode {
		return result
	}

	queue := arrayqueue.New[uint32]()
	queue.Enqueue(tree.root)

	for !queue.Empty() {
		cur, _ := queue.Dequeue()
		nd := &tree.storage[cur]

		result = append(result, nd.key)

		if nd.left != nilNode {
			queue.Enqueue(nd.left)
		}

		if nd.right != nilNode {
			queue.Enqueue(nd.right)
		}
	}

	return result
}

// DFSPreOrder returns the keys in Node, Left, Right order.
func (tree *Tree[K]) DFSPreOrder() []K {
	return tree.depthFirst(stageEnter)
}

// DFSInOrder returns the keys in Left, Node, Right order, which is ascending.
func (tree *Tree[K]) DFSInOrder() []K {
	return tree.depthFirst(stageBetween)
}

// DFSPostOrder returns the keys in Left, Right, Node order.
func (tree *Tree[K]) DFSPostOrder() []K {
	return tree.depthFirst(stageLeave)
}

// stage is how far a depth-first walk has progressed through one node.
type stage uint8

const (
	// Neither subtree visited yet.
	stageEnter stage = iota
	// Left subtree done, right subtree pending.
	stageBetween
	// Both subtrees done.
	stageLeave
)

type frame struct {
	node  uint32
	stage stage
}

// depthFirst walks the tree with an explicit stack and appends a node's key
// when its frame reaches emitAt. Every node passes through all three stages,
// so the emit stage alone selects pre-, in- or post-order.
func (tree *Tree[K]) depthFirst(emitAt stage) []K {
	result := make([]K, 0, tree.count)
	if tree.root == nilNode {
		return result
	}

	stack := arraystack.New[frame]()
	stack.Push(frame{node: tree.root, stage: stageEnter})

	for !stack.Empty() {
		top, _ := stack.Pop()
		nd := &tree.storage[top.node]

		if top.stage == emitAt {
			result = append(result, nd.key)
		}

		switch top.stage {
		case stageEnter:
			stack.Push(frame{node: top.node, stage: stageBetween})

			if nd.left != nilNode {
				stack.Push(frame{node: nd.left, stage: stageEnter})
			}
		case stageBetween:
			stack.Push(frame{node: top.node, stage: stageLeave})

			if nd.right != nilNode {
				stack.Push(frame{node: nd.right, stage: stageEnter})
			}
		case stageLeave:
		}
	}

	return result
}

func (tree *Tree[K]) malloc(key K) uint32 {
	if len(tree.storage) == 0 {
		// Zero is reserved.
		tree.storage = append(tree.storage, node[K]{})
	}

	nodeLen := len(tree.storage)
	if uint64(nodeLen) >= uint64(maxNode) {
		panic(errors.AssertionFailedf("bst: arena exhausted at %d nodes", nodeLen))
	}

	tree.storage = append(tree.storage, node[K]{key: key, left: nilNode, right: nilNode})
	tree.count++

	return safeconv.MustIntToUint32(nodeLen)
}
