package db

import (
	"strconv"

	"github.com/crowdstake/crowdstake-server/database/models"
	"github.com/crowdstake/crowdstake-server/database/models/crowdfund"
	"github.com/crowdstake/crowdstake-server/types"
	"gorm.io/gorm"
)

// DBApp is an interface for different database applications.
type DBApp interface {
	// Models returns the models for a given database app, parents first.
	Models() []interface{}

	// IsEmpty check if a given database is empty.
	IsEmpty(db *gorm.DB) bool

	// PreReset is executed before db is reset.
	PreReset(db *gorm.DB) error

	// PostReset is executed after db is reset.
	PostReset(db *gorm.DB) error
}

// CrowdfundDBApp owns the campaign, reward and staking tables.
type CrowdfundDBApp struct{}

// Models returns the models for a given database app.
func (*CrowdfundDBApp) Models() []interface{} {
	return crowdfund.AllModels
}

// IsEmpty check if a given database is empty.
func (*CrowdfundDBApp) IsEmpty(db *gorm.DB) bool {
	return !db.Migrator().HasTable(&crowdfund.Campaign{})
}

// PreReset is executed before db is reset.
func (*CrowdfundDBApp) PreReset(*gorm.DB) error {
	return nil
}

// PostReset bumps the schema version.
func (*CrowdfundDBApp) PostReset(tx *gorm.DB) error {
	return bumpSchemaVersion(tx)
}

// SchemaVersion returns the last recorded schema version, 0 when none.
func SchemaVersion(db *gorm.DB) (int, error) {
	var rows []models.System
	err := db.Where("name = ?", types.SysVarSchemaVersion).Order("id desc").Limit(1).Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return 0, err
	}
	return strconv.Atoi(rows[0].Value)
}

func bumpSchemaVersion(tx *gorm.DB) error {
	v, err := SchemaVersion(tx)
	if err != nil {
		logger.Warn("unreadable schema_version, restart from 1: %v", err)
		v = 0
	}
	if err := tx.Create(&models.System{
		Name:  types.SysVarSchemaVersion,
		Value: strconv.Itoa(v + 1),
	}).Error; err != nil {
		return err
	}
	logger.Info("Initialized DB Schema version to %v.", v+1)
	return nil
}
