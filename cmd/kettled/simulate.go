package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"

	"github.com/kettle-labs/kettle/x/liquidation/keeper"
	"github.com/kettle-labs/kettle/x/liquidation/types"
)

const (
	flagGenesis    = "genesis"
	flagInvariants = "check-invariants"
)

// scriptStep is one scripted message: the host environment plus a typed
// payload selected by the type tag.
type scriptStep struct {
	Time   int64           `json:"time"`
	Height int64           `json:"height"`
	Sender string          `json:"sender"`
	Type   string          `json:"type"`
	Msg    json.RawMessage `json:"msg"`
}

type stepOutput struct {
	Step    int            `json:"step"`
	Type    string         `json:"type"`
	Error   string         `json:"error,omitempty"`
	Events  []types.Event  `json:"events,omitempty"`
	Effects []effectOutput `json:"effects,omitempty"`
}

type effectOutput struct {
	Call string `json:"call"`
	Data any    `json:"data"`
}

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate [script.json]",
		Short: "Replay a message script against a fresh engine",
		Long: `Replay a JSON message script against a fresh auction engine and print
the result of every step as a JSON line. A failing step leaves the state
untouched and the run continues, mirroring on-chain semantics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := loadParams(cmd)
			if err != nil {
				return err
			}
			minter, err := cmd.Flags().GetString(flagMinter)
			if err != nil {
				return err
			}
			self, err := cmd.Flags().GetString(flagSelf)
			if err != nil {
				return err
			}

			k, err := keeper.NewKeeper(log.NewNopLogger(), params, types.Address(minter), types.Address(self))
			if err != nil {
				return err
			}

			genesisPath, err := cmd.Flags().GetString(flagGenesis)
			if err != nil {
				return err
			}
			if genesisPath != "" {
				raw, err := os.ReadFile(genesisPath)
				if err != nil {
					return fmt.Errorf("read genesis: %w", err)
				}
				var g types.GenesisState
				if err := json.Unmarshal(raw, &g); err != nil {
					return fmt.Errorf("parse genesis: %w", err)
				}
				if err := k.InitGenesis(&g); err != nil {
					return fmt.Errorf("init genesis: %w", err)
				}
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}
			var steps []scriptStep
			if err := json.Unmarshal(raw, &steps); err != nil {
				return fmt.Errorf("parse script: %w", err)
			}

			checkInvariants, err := cmd.Flags().GetBool(flagInvariants)
			if err != nil {
				return err
			}

			ms := keeper.NewMsgServerImpl(k)
			enc := json.NewEncoder(cmd.OutOrStdout())
			for i, step := range steps {
				out := runStep(ms, i, step)
				if checkInvariants {
					if err := k.CheckInvariants(); err != nil {
						return fmt.Errorf("step %d broke the state invariants: %w", i, err)
					}
				}
				if err := enc.Encode(out); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().String(flagGenesis, "", "JSON genesis snapshot to start from")
	cmd.Flags().Bool(flagInvariants, true, "verify state invariants after every step")
	return cmd
}

func runStep(ms keeper.MsgServer, i int, step scriptStep) stepOutput {
	out := stepOutput{Step: i, Type: step.Type}

	msg, err := decodeMsg(step)
	if err != nil {
		out.Error = err.Error()
		return out
	}

	ctx := types.NewContext(time.Unix(step.Time, 0).UTC(), step.Height, types.Address(step.Sender))
	res, err := ms.Handle(ctx, msg)
	if err != nil {
		out.Error = err.Error()
		return out
	}

	out.Events = res.Events
	for _, eff := range res.Effects {
		out.Effects = append(out.Effects, describeEffect(eff))
	}
	return out
}

// decodeMsg maps the script's type tag onto the concrete message type. The
// sender field of the step always wins over one embedded in the payload.
func decodeMsg(step scriptStep) (types.Msg, error) {
	var msg types.Msg
	switch step.Type {
	case types.TypeMsgTouch:
		msg = &types.MsgTouch{}
	case types.TypeMsgEnsureNoUnclaimed:
		msg = &types.MsgEnsureNoUnclaimedSlices{}
	case types.TypeMsgSendSliceToAuction:
		msg = &types.MsgSendSliceToAuction{}
	case types.TypeMsgCancelSliceLiquidation:
		msg = &types.MsgCancelSliceLiquidation{}
	case types.TypeMsgTouchSlices:
		msg = &types.MsgTouchSlices{}
	case types.TypeMsgTouchOldestSlices:
		msg = &types.MsgTouchOldestSlices{}
	case types.TypeMsgPlaceBid:
		msg = &types.MsgPlaceBid{}
	case types.TypeMsgReclaimBid:
		msg = &types.MsgReclaimBid{}
	case types.TypeMsgReclaimWinningBid:
		msg = &types.MsgReclaimWinningBid{}
	default:
		return nil, fmt.Errorf("unknown message type %q", step.Type)
	}

	if len(step.Msg) > 0 {
		if err := json.Unmarshal(step.Msg, msg); err != nil {
			return nil, fmt.Errorf("parse %s payload: %w", step.Type, err)
		}
	}
	setSender(msg, types.Address(step.Sender))
	return msg, nil
}

func setSender(msg types.Msg, sender types.Address) {
	switch m := msg.(type) {
	case *types.MsgTouch:
		m.Sender = sender
	case *types.MsgEnsureNoUnclaimedSlices:
		m.Sender = sender
	case *types.MsgSendSliceToAuction:
		m.Sender = sender
	case *types.MsgCancelSliceLiquidation:
		m.Sender = sender
	case *types.MsgTouchSlices:
		m.Sender = sender
	case *types.MsgTouchOldestSlices:
		m.Sender = sender
	case *types.MsgPlaceBid:
		m.Sender = sender
	case *types.MsgReclaimBid:
		m.Sender = sender
	case *types.MsgReclaimWinningBid:
		m.Sender = sender
	}
}

func describeEffect(eff types.Effect) effectOutput {
	switch e := eff.(type) {
	case types.CallCancelSliceLiquidation:
		return effectOutput{Call: "cancel_slice_liquidation", Data: e}
	case types.CallBurrowSendSliceToChecker:
		return effectOutput{Call: "burrow_send_slice_to_checker", Data: e}
	case types.CallTouchLiquidationSlices:
		return effectOutput{Call: "touch_liquidation_slices", Data: e}
	case types.CallTransferBidTicket:
		return effectOutput{Call: "transfer_bid_ticket", Data: e}
	case types.CallTransferKit:
		return effectOutput{Call: "transfer_kit", Data: e}
	case types.CallUnitTransfer:
		return effectOutput{Call: "unit_transfer", Data: e}
	default:
		return effectOutput{Call: fmt.Sprintf("%T", eff), Data: eff}
	}
}
