package types

import (
	"fmt"

	"cosmossdk.io/math"
)

var (
	// DefaultMaxQueueHeight bounds the AVL depth of the liquidation queue.
	DefaultMaxQueueHeight int64 = 64

	// DefaultMaxLotSize is 10_000 tez.
	DefaultMaxLotSize = math.NewInt(10_000_000_000)

	// 5%
	DefaultMinLotQueueFraction = NewRatio(5, 100)

	// 0.01% per second
	DefaultAuctionDecayRate = NewRatio(1, 10_000)

	// 0.33%
	DefaultBidImprovementFactor = NewRatio(33, 10_000)

	// 10%
	DefaultLiquidationPenalty = NewRatio(1, 10)

	DefaultBidIntervalSec    int64 = 1200
	DefaultBidIntervalBlocks int64 = 20

	DefaultNumberOfSlicesToProcess = 5

	// kit carries six decimals
	DefaultKitScalingFactor = math.NewInt(1_000_000)
)

// Params holds every tunable constant of the auction engine. The engine
// never reads process-wide state; a Params value is passed in at keeper
// construction.
type Params struct {
	// MaxQueueHeight caps the AVL height of the queued tree.
	MaxQueueHeight int64
	// MaxLotSize is the mutez ceiling of a single lot.
	MaxLotSize math.Int
	// MinLotQueueFraction is the minimum fraction of the queue a lot must
	// absorb, so a long queue drains in a bounded number of auctions.
	MinLotQueueFraction Ratio
	// AuctionDecayRate is the per-second reserve price decay while descending.
	AuctionDecayRate Ratio
	// BidImprovementFactor is the minimum relative increment between bids.
	BidImprovementFactor Ratio
	// LiquidationPenalty is the fraction of proceeds burned on a warranted
	// liquidation.
	LiquidationPenalty Ratio
	// BidIntervalSec and BidIntervalBlocks must both elapse after the last
	// bid before the auction can close.
	BidIntervalSec    int64
	BidIntervalBlocks int64
	// NumberOfSlicesToProcess caps the slices drained per message.
	NumberOfSlicesToProcess int
	// KitScalingFactor is the integer scale of kit amounts.
	KitScalingFactor math.Int
}

func DefaultParams() Params {
	return Params{
		MaxQueueHeight:          DefaultMaxQueueHeight,
		MaxLotSize:              DefaultMaxLotSize,
		MinLotQueueFraction:     DefaultMinLotQueueFraction,
		AuctionDecayRate:        DefaultAuctionDecayRate,
		BidImprovementFactor:    DefaultBidImprovementFactor,
		LiquidationPenalty:      DefaultLiquidationPenalty,
		BidIntervalSec:          DefaultBidIntervalSec,
		BidIntervalBlocks:       DefaultBidIntervalBlocks,
		NumberOfSlicesToProcess: DefaultNumberOfSlicesToProcess,
		KitScalingFactor:        DefaultKitScalingFactor,
	}
}

func (p Params) Validate() error {
	if p.MaxQueueHeight <= 0 {
		return fmt.Errorf("max queue height must be positive")
	}

	if p.MaxLotSize.IsNil() || !p.MaxLotSize.IsPositive() {
		return fmt.Errorf("max lot size must be positive")
	}

	if err := p.MinLotQueueFraction.Validate(); err != nil {
		return fmt.Errorf("min lot queue fraction: %w", err)
	}
	if p.MinLotQueueFraction.GTE(OneRatio()) {
		return fmt.Errorf("min lot queue fraction must be below one")
	}

	if err := p.AuctionDecayRate.Validate(); err != nil {
		return fmt.Errorf("auction decay rate: %w", err)
	}
	if p.AuctionDecayRate.GTE(OneRatio()) {
		return fmt.Errorf("auction decay rate must be below one")
	}

	if err := p.BidImprovementFactor.Validate(); err != nil {
		return fmt.Errorf("bid improvement factor: %w", err)
	}
	if p.BidImprovementFactor.IsZero() {
		return fmt.Errorf("bid improvement factor must be positive")
	}

	if err := p.LiquidationPenalty.Validate(); err != nil {
		return fmt.Errorf("liquidation penalty: %w", err)
	}
	if p.LiquidationPenalty.GTE(OneRatio()) {
		return fmt.Errorf("liquidation penalty must be below one")
	}

	if p.BidIntervalSec <= 0 {
		return fmt.Errorf("bid interval seconds must be positive")
	}
	if p.BidIntervalBlocks <= 0 {
		return fmt.Errorf("bid interval blocks must be positive")
	}

	if p.NumberOfSlicesToProcess <= 0 {
		return fmt.Errorf("number of slices to process must be positive")
	}

	if p.KitScalingFactor.IsNil() || !p.KitScalingFactor.IsPositive() {
		return fmt.Errorf("kit scaling factor must be positive")
	}

	return nil
}
