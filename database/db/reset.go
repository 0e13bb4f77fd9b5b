package db

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/crowdstake/crowdstake-server/database/models"
	"github.com/crowdstake/crowdstake-server/env"
	"github.com/crowdstake/crowdstake-server/types"
	"gorm.io/gorm"
)

// Return DBApp given an app type.
func dbAppFromType(appType types.AppType) DBApp {
	switch appType {
	case types.Crowdfund:
		return &CrowdfundDBApp{}
	default:
		panic("undefined application environment")
	}
}

// Reset resets the entire database. It will:
// 1. Drop all tables. 2. Do migration (contains initial schema & default records).
// Without force it refuses to touch a database that already holds data.
func Reset(db *gorm.DB, appType types.AppType, force bool) error {
	dbApp := dbAppFromType(appType)

	if !force && !dbApp.IsEmpty(db) {
		return fmt.Errorf("%s database exists, reset aborted", appType)
	}

	logger.Info("Resetting database ...")

	// Tables are reused in CI, only the rows go.
	if env.IsCI() && hasTables(db, dbApp) {
		if err := DeleteAllData(db, appType); err != nil {
			return err
		}
		logger.Info("already has table, ignored")
		return Transaction(db, func(tx *gorm.DB) error {
			logger.Info("Running post reset hook ...")
			return dbApp.PostReset(tx)
		})
	}

	if err := dropAllTables(db, dbApp); err != nil {
		return err
	}

	logger.Info("Creating models ...")
	err := Transaction(db, func(tx *gorm.DB) error {
		for _, model := range dbApp.Models() {
			if e := tx.AutoMigrate(model); e != nil {
				return fmt.Errorf("migrate %s: %w", tableName(db, model), e)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = Transaction(db, func(tx *gorm.DB) error {
		logger.Info("Creating indices and constraints ...")
		for _, model := range dbApp.Models() {
			name := tableName(db, model)
			if e := CreateCustomIndices(tx, model, name); e != nil {
				return e
			}
			if e := CreateForeignKeyConstraints(tx, model, name); e != nil {
				return e
			}
		}
		logger.Info("Running post reset hook ...")
		return dbApp.PostReset(tx)
	})
	if err != nil {
		return err
	}
	logger.Info("Reset Done")
	return nil
}

func tableName(db *gorm.DB, model interface{}) string {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		logger.Warn("failed to parse model %T, err=%v", model, err)
		return ""
	}
	return stmt.Schema.Table
}

func hasTables(db *gorm.DB, app DBApp) bool {
	var names []string
	err := db.Raw(`SELECT table_name FROM information_schema.tables WHERE table_type = 'BASE TABLE' AND table_schema = CURRENT_SCHEMA()`).
		Scan(&names).Error
	if err != nil {
		return false
	}
	existing := make(map[string]bool, len(names))
	for _, n := range names {
		existing[n] = true
	}
	for _, model := range app.Models() {
		if !existing[tableName(db, model)] {
			return false
		}
	}
	return true
}

// DeleteAllData removes the rows of every table but system, children first.
func DeleteAllData(db *gorm.DB, appType types.AppType) error {
	dbApp := dbAppFromType(appType)

	logger.Info("`DELETE` data in all tables")
	if err := dbApp.PreReset(db); err != nil {
		logger.Warn("failed to PreReset db, err=%v", err)
	}
	return Transaction(db, func(tx *gorm.DB) error {
		all := dbApp.Models()
		for i := len(all) - 1; i >= 0; i-- {
			name := tableName(db, all[i])
			if name == "system" || name == "" {
				continue
			}
			if err := tx.Exec(fmt.Sprintf(`DELETE FROM "%s"`, name)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateCustomIndices creates custom indices if model implements models.CustomIndexer.
func CreateCustomIndices(tx *gorm.DB, model interface{}, tableName string) error {
	m, ok := model.(models.CustomIndexer)
	if !ok {
		return nil
	}
	for _, idx := range m.Indexes() {
		unique := ""
		extension := ""
		if idx.Unique {
			unique = "UNIQUE"
		}
		if len(idx.Type) != 0 {
			extension = "USING " + idx.Type
		}
		stat := fmt.Sprintf(
			`CREATE %s INDEX IF NOT EXISTS %s_%s ON "%s" %s(%s) %s`,
			unique, tableName, idx.Name, tableName, extension, strings.Join(idx.Fields, ","), idx.Condition)
		if err := tx.Exec(stat).Error; err != nil {
			return fmt.Errorf("create index %s_%s: %w", tableName, idx.Name, err)
		}
	}
	return nil
}

var nonAlpha = regexp.MustCompile("(_*[^a-zA-Z]+_*|_+)")

func buildForeignKeyName(tableName, field, dest string) string {
	return nonAlpha.ReplaceAllString(fmt.Sprintf("%s_%s_%s_foreign", tableName, field, dest), "_")
}

// CreateForeignKeyConstraints creates foreign key constraints if model implements
// models.ForeignKeyConstrainer.
func CreateForeignKeyConstraints(tx *gorm.DB, model interface{}, tableName string) error {
	m, ok := model.(models.ForeignKeyConstrainer)
	if !ok {
		return nil
	}
	for _, c := range m.ForeignKeyConstraints() {
		keyName := buildForeignKeyName(tableName, c.Field, c.Dest)
		err := tx.Exec(fmt.Sprintf(`ALTER TABLE IF EXISTS "%s" ADD CONSTRAINT `+
			"%s FOREIGN KEY (%s) REFERENCES %s ON DELETE %s ON UPDATE %s",
			tableName, keyName, c.Field, c.Dest, c.OnDelete, c.OnUpdate)).Error
		if err != nil {
			return fmt.Errorf("create constraint %s: %w", keyName, err)
		}
	}
	return nil
}

// dropAllTables keeps the system table so schema_version keeps counting across resets.
func dropAllTables(db *gorm.DB, dbApp DBApp) error {
	logger.Info("Dropping old tables ...")
	return Transaction(db, func(tx *gorm.DB) error {
		for _, model := range dbApp.Models() {
			name := tableName(db, model)
			if name == "system" || name == "" {
				continue
			}
			stat := fmt.Sprintf(`DROP TABLE IF EXISTS "%s" CASCADE`, name)
			if err := tx.Exec(stat).Error; err != nil {
				return fmt.Errorf("exec '%s': %w", stat, err)
			}
		}
		return nil
	})
}
