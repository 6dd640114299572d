package repositories

import (
	"path/filepath"
	"testing"
	"time"

	"app-fin-management/database"
	"app-fin-management/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedCompany(t *testing.T, db *gorm.DB) *models.Company {
	t.Helper()
	company := &models.Company{Name: "Acme Trading"}
	require.NoError(t, db.Create(company).Error)
	return company
}

func seedPeriod(t *testing.T, db *gorm.DB, companyID uint, name string, start, end time.Time) *models.FiscalPeriod {
	t.Helper()
	period := &models.FiscalPeriod{CompanyID: companyID, Name: name, StartDate: start, EndDate: end}
	require.NoError(t, db.Create(period).Error)
	return period
}

func seedMarch(t *testing.T, db *gorm.DB, companyID uint) *models.FiscalPeriod {
	return seedPeriod(t, db, companyID, "FY2026-03",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
}

func seedAccount(t *testing.T, db *gorm.DB, companyID uint, code, name, accountType string) *models.Account {
	t.Helper()
	category := &models.AccountCategory{CompanyID: companyID, Name: name + " Category", Type: accountType}
	require.NoError(t, db.Create(category).Error)
	account := &models.Account{
		CompanyID:  companyID,
		Code:       code,
		Name:       name,
		CategoryID: category.ID,
		IsActive:   true,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}
