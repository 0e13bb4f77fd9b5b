package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/crowdstake/crowdstake-server/common/config"
	"github.com/crowdstake/crowdstake-server/common/logging"
	"github.com/crowdstake/crowdstake-server/env"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Host specifies the database host.
type Host string

// Host enums.
const (
	Default Host = "default"
	Master  Host = "master"
)

var logger = logging.NewLoggerTag("database")

var (
	dbMap      map[Host]*gorm.DB
	dbMapMutex sync.Mutex
)

// NewDB opens a postgres handle with the shared naming strategy and pool settings.
// Callers own the handle; the package level map is only used by the binaries.
func NewDB(args string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(args), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Warn("failed to open gorm db err=%v", err)
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to get sql.DB from gorm db err=%v", err)
		return nil, err
	}

	sqlDB.SetMaxIdleConns(config.GetInt("DB_MAX_IDLE_CONNS", 4))
	sqlDB.SetMaxOpenConns(config.GetInt("DB_MAX_OPEN_CONNS", 16))
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	return db, nil
}

// Initialize dials every requested host plus Default.
// It only creates the connection instances, doesn't reset or migrate anything.
// In CI the Default host is moved onto a fresh database so test runs don't collide.
func Initialize(extraHosts ...Host) {
	dbMapMutex.Lock()
	defer dbMapMutex.Unlock()

	if dbMap == nil {
		dbMap = make(map[Host]*gorm.DB)
	}
	for _, host := range append(extraHosts, Default) {
		if _, ok := dbMap[host]; !ok {
			logger.Info("Initializing %s database ...", host)
			dbMap[host] = dialDB(config.GetString("DB_ARGS"))
		}
	}

	if env.IsCI() {
		name := config.GetString("DBNAME", fmt.Sprintf("test_%v", time.Now().UnixNano()))
		if err := dbMap[Default].Exec("CREATE DATABASE " + name).Error; err != nil {
			logger.Warn("create database: %v", err)
		}
		closeAll()

		req, err := url.Parse(config.GetString("DB_ARGS"))
		if err != nil {
			logger.Critical("invalid DB_ARGS: %v", err)
		}
		req.Path = "/" + name
		logger.Info("Dial to %s", req.Redacted())
		dbMap[Default] = dialDB(req.String())
	}
	logger.Info("Initialize DONE")
}

// Finalize closes every handle opened by Initialize.
func Finalize() {
	dbMapMutex.Lock()
	defer dbMapMutex.Unlock()
	closeAll()
}

// GetDB returns the database handle of host, dialing it on first use.
func GetDB(host ...Host) *gorm.DB {
	if len(host) > 1 {
		panic("invalid usage of GetDB")
	}
	target := Default
	if len(host) == 1 {
		target = host[0]
	}

	dbMapMutex.Lock()
	ret := dbMap[target]
	dbMapMutex.Unlock()
	if ret != nil {
		return ret
	}

	Initialize(target)

	dbMapMutex.Lock()
	ret = dbMap[target]
	dbMapMutex.Unlock()
	if ret == nil {
		panic("gets nil db: " + target)
	}
	return ret
}

// Close releases the pool behind a handle returned by NewDB.
func Close(db *gorm.DB) {
	var sqlDB *sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to get sql.DB, err=%v", err)
		return
	}
	if err = sqlDB.Close(); err != nil {
		logger.Warn("failed to close db, err=%v", err)
	}
}

// Ping checks the connection.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func closeAll() {
	for key, db := range dbMap {
		Close(db)
		delete(dbMap, key)
	}
}

func dialDB(args string) *gorm.DB {
	db, err := NewDB(args)
	if err != nil {
		logger.Critical(err.Error())
	}
	return db
}
