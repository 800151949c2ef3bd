package types

// Event types and attribute keys for the module's operations, in the
// teacher's flat string-constant convention for SDK events. No keeper
// method emits events with them.
const (
	EventTypePoolCreated       = "pool_created"
	EventTypePoolConfigured    = "pool_configured"
	EventTypeDeposit           = "deposit"
	EventTypeWithdraw          = "withdraw"
	EventTypeBorrow            = "borrow"
	EventTypeRepay             = "repay"
	EventTypeCollect           = "collect"
	EventTypeInterestAccrued   = "interest_accrued"
	EventTypeAccountCreated    = "account_created"
	EventTypeAccountClosed     = "account_closed"
	EventTypePositionRegistered = "position_registered"
	EventTypePositionClosed    = "position_closed"
	EventTypeAdapterInvoked    = "adapter_invoked"
	EventTypeLiquidationBegin  = "liquidation_begin"
	EventTypeLiquidationStep   = "liquidation_step"
	EventTypeLiquidationEnd    = "liquidation_end"

	AttributeKeyPoolID        = "pool_id"
	AttributeKeyAccountID     = "account_id"
	AttributeKeyAssetID       = "asset_id"
	AttributeKeyAmount        = "amount"
	AttributeKeyLiquidationID = "liquidation_id"
	AttributeKeyLiquidatorID  = "liquidator_id"
	AttributeKeyCRatio        = "c_ratio"
	AttributeKeyNet           = "net"
)
