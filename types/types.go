package types

// AppType specifies app type.
type AppType string

// AppType enums.
const (
	Crowdfund AppType = "crowdfund"
)

// SysVar specifies the system variables.
type SysVar string

// SysVar enums.
const (
	SysVarSchemaVersion SysVar = "schema_version"
)

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

// CampaignStatus enums.
const (
	CampaignActive   CampaignStatus = "active"
	CampaignArchived CampaignStatus = "archived"
)

// WalletTxType tags a wallet ledger row.
type WalletTxType string

// WalletTxType enums.
const (
	WalletTxDeposit  WalletTxType = "deposit"
	WalletTxStake    WalletTxType = "stake"
	WalletTxWithdraw WalletTxType = "withdraw"
)

// DefaultCategory is assigned to campaigns created without one.
const DefaultCategory = "General"
