package models

import "time"

// ForeignKeyConstraint defines the required arguments to the AddForeignKey call.
type ForeignKeyConstraint struct {
	Field    string
	Dest     string
	OnDelete string
	OnUpdate string
}

// ForeignKeyConstrainer is implemented by models that need foreign keys created after
// every table exists.
type ForeignKeyConstrainer interface {
	ForeignKeyConstraints() []ForeignKeyConstraint
}

// CustomIndex defines index information.
type CustomIndex struct {
	Name      string
	Unique    bool
	Fields    []string
	Type      string
	Condition string
}

// CustomIndexer is implemented by models declaring indices outside gorm tags.
type CustomIndexer interface {
	Indexes() []CustomIndex
}

// Base carries the bookkeeping timestamps of every model.
type Base struct {
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp with time zone" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp with time zone" json:"-"`
}
