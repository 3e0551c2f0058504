// Package sheets exports group savings summaries to Google Sheets.
package sheets

import (
	"fmt"
)

// DefaultTabName is the sheet the summary is written to.
const DefaultTabName = "Savings Summary"

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TabName            string
	TimeZone           string
	BatchSize          int
	EnableFormatting   bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableFormatting: true,
		SpreadsheetName:  "Kitty Savings",
		TabName:          DefaultTabName,
		TimeZone:         "UTC",
		BatchSize:        500,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return fmt.Errorf("no authentication method configured")
	}

	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("multiple authentication methods configured; use either OAuth2 or service account")
	}

	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}

	if c.TabName == "" {
		return fmt.Errorf("tab name cannot be empty")
	}

	return nil
}
