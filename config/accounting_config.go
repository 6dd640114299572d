package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// AccountingConfig holds the posting and export settings that used to live as
// scattered constants: the accounts the posting service targets, and the
// formatting contract of the export layer.
type AccountingConfig struct {
	DefaultAccounts DefaultAccountMapping `json:"default_accounts"`
	Export          ExportConfiguration   `json:"export"`
	Statement       StatementConfig       `json:"statement"`
}

// DefaultAccountMapping names the account codes the posting service resolves
// at import time. Codes, not ids, so the mapping survives re-seeding.
type DefaultAccountMapping struct {
	Bank        string `json:"bank"`         // Default: 1100
	BankCharges string `json:"bank_charges"` // Default: 5200
	Suspense    string `json:"suspense"`     // Default: 5999, catches unclassified lines
}

// ExportConfiguration is the explicit formatting configuration handed to the
// export formatter; there is no locale singleton anywhere.
type ExportConfiguration struct {
	SystemName      string `json:"system_name"`      // Default: FIN Financial Management System
	TextWidth       int    `json:"text_width"`       // Default: 120
	TimestampLayout string `json:"timestamp_layout"` // Default: 2006-01-02 15:04:05
	ShortDateLayout string `json:"short_date_layout"` // Default: 02/01
	LongDateLayout  string `json:"long_date_layout"` // Default: 02/01/2006
}

// StatementConfig captures the primary bank's statement geometry knobs that
// are deployment-specific rather than structural.
type StatementConfig struct {
	MaxCalibrationDelta int `json:"max_calibration_delta"` // Default: 5
}

var (
	accountingConfig *AccountingConfig
	configMutex      sync.RWMutex
)

// LoadAccountingConfig loads the accounting configuration from a JSON file,
// falling back to defaults when the file does not exist.
func LoadAccountingConfig(configPath string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	if configPath == "" {
		configPath = "config/accounting_config.json"
	}

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.Open(configPath)
		if err != nil {
			return fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()

		accountingConfig = &AccountingConfig{}
		if err := json.NewDecoder(file).Decode(accountingConfig); err != nil {
			return fmt.Errorf("failed to decode config: %w", err)
		}
	} else {
		accountingConfig = defaultAccountingConfig()
	}

	return nil
}

// GetAccountingConfig returns the current accounting configuration, loading
// defaults on first use.
func GetAccountingConfig() *AccountingConfig {
	configMutex.RLock()
	if accountingConfig != nil {
		defer configMutex.RUnlock()
		return accountingConfig
	}
	configMutex.RUnlock()

	configMutex.Lock()
	defer configMutex.Unlock()
	if accountingConfig == nil {
		accountingConfig = defaultAccountingConfig()
	}
	return accountingConfig
}

func defaultAccountingConfig() *AccountingConfig {
	return &AccountingConfig{
		DefaultAccounts: DefaultAccountMapping{
			Bank:        "1100",
			BankCharges: "5200",
			Suspense:    "5999",
		},
		Export: ExportConfiguration{
			SystemName:      "FIN Financial Management System",
			TextWidth:       120,
			TimestampLayout: "2006-01-02 15:04:05",
			ShortDateLayout: "02/01",
			LongDateLayout:  "02/01/2006",
		},
		Statement: StatementConfig{
			MaxCalibrationDelta: 5,
		},
	}
}
