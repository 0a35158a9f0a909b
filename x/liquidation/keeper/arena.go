package keeper

import (
	"fmt"

	"cosmossdk.io/math"
	"github.com/bits-and-blooms/bitset"

	"github.com/kettle-labs/kettle/x/liquidation/types"
)

type nodeKind uint8

const (
	kindFree nodeKind = iota
	kindLeaf
	kindBranch
	kindRoot
)

// node is one arena entry. The kind tag selects which field group is live:
// leaves carry a slice, branches carry children with cached heights and tez
// weights, roots carry an optional child and optional auction outcome.
type node struct {
	kind   nodeKind
	parent types.NodeID

	// leaf
	slice types.Slice

	// branch
	left        types.NodeID
	right       types.NodeID
	leftHeight  int64
	rightHeight int64
	leftTez     math.Int
	rightTez    math.Int

	// root
	child   types.NodeID
	outcome *types.AuctionOutcome
}

// Arena is the flat backing store of every AVL node. Handles are indices;
// freed slots are tracked in a bitset and reused lowest-first so handle
// assignment stays deterministic.
type Arena struct {
	nodes []node
	free  *bitset.BitSet
}

// NewArena returns an empty arena. Slot zero is reserved so the zero NodeID
// can serve as the nil handle.
func NewArena() *Arena {
	return &Arena{
		nodes: make([]node, 1),
		free:  bitset.New(64),
	}
}

// Alloc stores n and returns its handle, reusing the lowest freed slot when
// one exists.
func (a *Arena) Alloc(n node) types.NodeID {
	if i, ok := a.free.NextSet(1); ok {
		a.free.Clear(i)
		a.nodes[i] = n
		return types.NodeID(i)
	}
	a.nodes = append(a.nodes, n)
	return types.NodeID(len(a.nodes) - 1)
}

// at resolves a handle. A dangling or nil handle is an internal
// inconsistency and crashes the process.
func (a *Arena) at(id types.NodeID) *node {
	if id <= 0 || int(id) >= len(a.nodes) || a.nodes[id].kind == kindFree {
		panic(fmt.Sprintf("invariant violation: dangling arena pointer %d", id))
	}
	return &a.nodes[id]
}

// Free releases the slot behind id for reuse.
func (a *Arena) Free(id types.NodeID) {
	a.at(id) // validity check
	a.nodes[id] = node{}
	a.free.Set(uint(id))
}

// InUse returns the number of live nodes.
func (a *Arena) InUse() int {
	n := 0
	for i := 1; i < len(a.nodes); i++ {
		if a.nodes[i].kind != kindFree {
			n++
		}
	}
	return n
}

// Clone returns a deep copy sharing no mutable data with the receiver.
func (a *Arena) Clone() *Arena {
	nodes := make([]node, len(a.nodes))
	copy(nodes, a.nodes)
	for i := range nodes {
		if nodes[i].outcome != nil {
			outcome := *nodes[i].outcome
			nodes[i].outcome = &outcome
		}
	}
	return &Arena{
		nodes: nodes,
		free:  a.free.Clone(),
	}
}

// valid reports whether id currently resolves to a live node.
func (a *Arena) valid(id types.NodeID) bool {
	return id > 0 && int(id) < len(a.nodes) && a.nodes[id].kind != kindFree
}

// IsLeaf reports whether id is a live leaf handle.
func (a *Arena) IsLeaf(id types.LeafID) bool {
	return a.valid(types.NodeID(id)) && a.nodes[id].kind == kindLeaf
}

// IsTree reports whether id is a live root handle.
func (a *Arena) IsTree(id types.TreeID) bool {
	return a.valid(types.NodeID(id)) && a.nodes[id].kind == kindRoot
}
