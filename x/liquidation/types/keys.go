package types

const (
	// ModuleName is the name of the liquidation auction module
	ModuleName = "liquidation"

	// StoreKey is the string store representation
	StoreKey = ModuleName

	// RouterKey is the msg router key for the liquidation auction module
	RouterKey = ModuleName
)
