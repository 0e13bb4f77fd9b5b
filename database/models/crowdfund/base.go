package crowdfund

import "github.com/crowdstake/crowdstake-server/database/models"

// AllModels collects the tables of the crowdfunding app, parents first.
var AllModels = []interface{}{
	&models.System{},

	&User{},
	&Campaign{},
	&Donation{},
	&UserReward{},
	&UserCampaignReward{},

	&Pool{},
	&Wallet{},
	&Stake{},
	&WalletTransaction{},
}
