package db

import (
	"errors"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DAO groups every table accessor. Each method takes the handle to run on, so the same
// DAO serves plain reads and transactions.
type DAO struct {
	UserDAO
	CampaignDAO
	DonationDAO
	RewardDAO
	PoolDAO
	WalletDAO
	StakeDAO
	WalletTransactionDAO
}

// NewDAO returns a DAO.
func NewDAO() *DAO {
	return &DAO{}
}

var forUpdate = clause.Locking{Strength: "UPDATE"}

const (
	sqlStateForeignKeyViolation = "23503"
	sqlStateUniqueViolation     = "23505"
)

func hasSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// IsUniqueViolation reports a unique constraint failure (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	return hasSQLState(err, sqlStateUniqueViolation)
}

// IsForeignKeyViolation reports a foreign key failure (SQLSTATE 23503), e.g. a row
// referencing a missing parent.
func IsForeignKeyViolation(err error) bool {
	return hasSQLState(err, sqlStateForeignKeyViolation)
}

// first loads one row into dst, reporting found=false instead of gorm.ErrRecordNotFound.
func first(db *gorm.DB, dst interface{}) (bool, error) {
	err := db.First(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}
