// Package traversal names the four tree traversal orders, describes them in
// a catalog, and drives an interactive selection of one order at a time.
package traversal

import (
	"cmp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/Sumatoshi-tech/treewalk/pkg/bst"
)

// ErrUnknownOrder is returned for an order name or value outside the four
// supported traversals.
var ErrUnknownOrder = errors.New("unknown traversal order")

// Order selects a traversal.
type Order int

// Traversal orders in catalog order.
const (
	BFS Order = iota
	DFSPreOrder
	DFSPostOrder
	DFSInOrder
)

// Orders lists every supported order in catalog order.
func Orders() []Order {
	return []Order{BFS, DFSPreOrder, DFSPostOrder, DFSInOrder}
}

// String returns the catalog id of the order.
func (o Order) String() string {
	switch o {
	case BFS:
		return "BFS"
	case DFSPreOrder:
		return "DFSPreOrder"
	case DFSPostOrder:
		return "DFSPostOrder"
	case DFSInOrder:
		return "DFSInOrder"
	default:
		return "Order(" + strconv.Itoa(int(o)) + ")"
	}
}

// ParseOrder accepts a catalog id or a short alias, ignoring case:
// "bfs", "preorder", "postorder", "inorder".
func ParseOrder(name string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bfs", "breadth-first", "levelorder":
		return BFS, nil
	case "dfspreorder", "preorder", "pre":
		return DFSPreOrder, nil
	case "dfspostorder", "postorder", "post":
		return DFSPostOrder, nil
	case "dfsinorder", "inorder", "in":
		return DFSInOrder, nil
	default:
		return 0, errors.Wrapf(ErrUnknownOrder, "%q", name)
	}
}

// MarshalText encodes the order as its catalog id.
func (o Order) MarshalText() ([]byte, error) {
	if !o.valid() {
		return nil, errors.Wrapf(ErrUnknownOrder, "%d", int(o))
	}

	return []byte(o.String()), nil
}

// UnmarshalText decodes any name accepted by ParseOrder.
func (o *Order) UnmarshalText(text []byte) error {
	parsed, err := ParseOrder(string(text))
	if err != nil {
		return err
	}

	*o = parsed

	return nil
}

func (o Order) valid() bool {
	return o >= BFS && o <= DFSInOrder
}

// Run computes the traversal of tree in the given order.
func Run[K cmp.Ordered](tree *bst.Tree[K], order Order) ([]K, error) {
	switch order {
	case BFS:
		return tree.BFS(), nil
	case DFSPreOrder:
		return tree.DFSPreOrder(), nil
	case DFSPostOrder:
		return tree.DFSPostOrder(), nil
	case DFSInOrder:
		return tree.DFSInOrder(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownOrder, "%d", int(order))
	}
}
