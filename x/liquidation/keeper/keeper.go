package keeper

import (
	"cosmossdk.io/log"
	"github.com/huandu/skiplist"

	"github.com/kettle-labs/kettle/x/liquidation/types"
)

// State is the whole mutable auction state. It is a value the dispatcher can
// clone and swap wholesale, which is how failed transitions roll back.
type State struct {
	arena *Arena

	// queued is the tree of slices waiting for an auction.
	queued types.TreeID

	// current is the live lot, nil when no auction is running.
	current *types.CurrentAuction

	// completed tracks the endpoints of the completed lot list, nil when
	// there are none.
	completed *types.CompletedAuctionsHead

	// burrowSlices maps burrow address to its chain endpoints, ordered by
	// address for deterministic iteration.
	burrowSlices *skiplist.SkipList
}

func NewState() *State {
	arena := NewArena()
	return &State{
		arena:        arena,
		queued:       arena.NewTree(),
		burrowSlices: skiplist.New(skiplist.String),
	}
}

// Clone returns a deep copy sharing no mutable data with the receiver.
func (s *State) Clone() *State {
	c := &State{
		arena:        s.arena.Clone(),
		queued:       s.queued,
		burrowSlices: skiplist.New(skiplist.String),
	}
	if s.current != nil {
		cur := *s.current
		c.current = &cur
	}
	if s.completed != nil {
		head := *s.completed
		c.completed = &head
	}
	for e := s.burrowSlices.Front(); e != nil; e = e.Next() {
		c.burrowSlices.Set(e.Key(), e.Value.(types.BurrowSlicesHead))
	}
	return c
}

func (s *State) burrowHead(burrow types.Address) (types.BurrowSlicesHead, bool) {
	v, ok := s.burrowSlices.GetValue(string(burrow))
	if !ok {
		return types.BurrowSlicesHead{}, false
	}
	return v.(types.BurrowSlicesHead), true
}

func (s *State) setBurrowHead(burrow types.Address, head types.BurrowSlicesHead) {
	s.burrowSlices.Set(string(burrow), head)
}

func (s *State) delBurrowHead(burrow types.Address) {
	s.burrowSlices.Remove(string(burrow))
}

// Keeper owns the auction state and implements every state transition. All
// mutating entry points go through the message server, which handles
// rollback; keeper methods mutate in place and return errors freely.
type Keeper struct {
	logger log.Logger
	params types.Params

	// minter is the only address allowed to feed and drain slices.
	minter types.Address
	// self is the module's own address, the only sender allowed to tick.
	self types.Address

	state *State
}

func NewKeeper(logger log.Logger, params types.Params, minter, self types.Address) (*Keeper, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Keeper{
		logger: logger.With("module", types.ModuleName),
		params: params,
		minter: minter,
		self:   self,
		state:  NewState(),
	}, nil
}

func (k *Keeper) Logger() log.Logger {
	return k.logger
}

func (k *Keeper) Params() types.Params {
	return k.params
}

// Minter returns the privileged minter address.
func (k *Keeper) Minter() types.Address {
	return k.minter
}
