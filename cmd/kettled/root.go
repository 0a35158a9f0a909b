package main

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kettle-labs/kettle/x/liquidation/types"
)

const (
	flagParams = "params"
	flagMinter = "minter"
	flagSelf   = "self"
)

// NewRootCmd returns the kettled command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "kettled",
		Short:        "collateral liquidation auction engine",
		SilenceUsage: true,
	}

	addEngineFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		simulateCmd(),
		showParamsCmd(),
	)
	return rootCmd
}

func addEngineFlags(fs *pflag.FlagSet) {
	fs.String(flagParams, "", "TOML file overriding the default parameters")
	fs.String(flagMinter, "minter", "address of the privileged minter")
	fs.String(flagSelf, "liquidation", "address of the module itself")
}

// loadParams returns the default parameters, overridden by the TOML file
// named with --params when one is given.
func loadParams(cmd *cobra.Command) (types.Params, error) {
	params := types.DefaultParams()

	path, err := cmd.Flags().GetString(flagParams)
	if err != nil {
		return types.Params{}, err
	}
	if path == "" {
		return params, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return types.Params{}, fmt.Errorf("read params file: %w", err)
	}

	if v.IsSet("max_queue_height") {
		params.MaxQueueHeight = v.GetInt64("max_queue_height")
	}
	if v.IsSet("max_lot_size") {
		lot, ok := math.NewIntFromString(v.GetString("max_lot_size"))
		if !ok {
			return types.Params{}, fmt.Errorf("invalid max_lot_size %q", v.GetString("max_lot_size"))
		}
		params.MaxLotSize = lot
	}
	if v.IsSet("min_lot_queue_fraction") {
		r, err := ratioFromConfig(v.GetIntSlice("min_lot_queue_fraction"))
		if err != nil {
			return types.Params{}, fmt.Errorf("min_lot_queue_fraction: %w", err)
		}
		params.MinLotQueueFraction = r
	}
	if v.IsSet("auction_decay_rate") {
		r, err := ratioFromConfig(v.GetIntSlice("auction_decay_rate"))
		if err != nil {
			return types.Params{}, fmt.Errorf("auction_decay_rate: %w", err)
		}
		params.AuctionDecayRate = r
	}
	if v.IsSet("bid_improvement_factor") {
		r, err := ratioFromConfig(v.GetIntSlice("bid_improvement_factor"))
		if err != nil {
			return types.Params{}, fmt.Errorf("bid_improvement_factor: %w", err)
		}
		params.BidImprovementFactor = r
	}
	if v.IsSet("liquidation_penalty") {
		r, err := ratioFromConfig(v.GetIntSlice("liquidation_penalty"))
		if err != nil {
			return types.Params{}, fmt.Errorf("liquidation_penalty: %w", err)
		}
		params.LiquidationPenalty = r
	}
	if v.IsSet("bid_interval_sec") {
		params.BidIntervalSec = v.GetInt64("bid_interval_sec")
	}
	if v.IsSet("bid_interval_blocks") {
		params.BidIntervalBlocks = v.GetInt64("bid_interval_blocks")
	}
	if v.IsSet("number_of_slices_to_process") {
		params.NumberOfSlicesToProcess = v.GetInt("number_of_slices_to_process")
	}

	if err := params.Validate(); err != nil {
		return types.Params{}, err
	}
	return params, nil
}

// ratioFromConfig interprets a two-element [num, den] array.
func ratioFromConfig(parts []int) (types.Ratio, error) {
	if len(parts) != 2 {
		return types.Ratio{}, fmt.Errorf("expected [numerator, denominator], got %v", parts)
	}
	r := types.NewRatio(int64(parts[0]), int64(parts[1]))
	if err := r.Validate(); err != nil {
		return types.Ratio{}, err
	}
	return r, nil
}

// showParamsCmd prints the effective parameters as JSON.
func showParamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "Print the effective auction parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := loadParams(cmd)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(params, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			return nil
		},
	}
}
