package models

import (
	"github.com/crowdstake/crowdstake-server/types"
)

// System stores system variables such as the schema version.
type System struct {
	Base

	ID    int64        `gorm:"column:id;primary_key;AUTO_INCREMENT;not null" json:"id"`
	Name  types.SysVar `gorm:"column:name;type:varchar(50);not null" json:"name"`
	Value string       `gorm:"column:value;type:varchar(512)" json:"value"`
}
