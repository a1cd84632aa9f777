package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/pacstays/internal/refdata"
)

// Config holds all runtime configuration for a pacload run.
type Config struct {
	DSN             string
	LogFormat       string // "text" or "json"
	ClaimsFile      string // optional Parquet snapshot instead of the warehouse feed
	CorrectionsFile string
	DryRun          bool
	Workers         int

	Corrections refdata.Corrections
}

// LoadCorrections fills the corrections tables: defaults first, then any
// sections the YAML file names replace the defaults wholesale.
func (c *Config) LoadCorrections() error {
	c.Corrections = refdata.Defaults()
	if c.CorrectionsFile == "" {
		return nil
	}

	data, err := os.ReadFile(c.CorrectionsFile)
	if err != nil {
		return fmt.Errorf("read corrections file: %w", err)
	}
	if err := yaml.Unmarshal(data, &c.Corrections); err != nil {
		return fmt.Errorf("parse corrections file: %w", err)
	}
	return c.validateCorrections()
}

func (c *Config) validateCorrections() error {
	corr := &c.Corrections
	for _, rm := range corr.ProviderRemaps {
		if rm.FromID == "" || rm.ToID == "" {
			return fmt.Errorf("provider remap needs from_id and to_id")
		}
		if rm.FromID == rm.ToID {
			return fmt.Errorf("provider remap %s maps to itself", rm.FromID)
		}
	}
	for _, gr := range corr.GapRepairs {
		if gr.ProviderID == "" || gr.MemberID == "" {
			return fmt.Errorf("gap repair scope needs provider_id and member_id")
		}
		if gr.WindowStart == "" || gr.WindowEnd == "" {
			return fmt.Errorf("gap repair scope for member %s needs window_start and window_end", gr.MemberID)
		}
	}
	if len(corr.LOSRecoveryRemarks) == 0 {
		return fmt.Errorf("los_recovery_remarks must not be empty")
	}
	return nil
}

// Validate checks fields every subcommand needs.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.ClaimsFile != "" {
		if _, err := os.Stat(c.ClaimsFile); err != nil {
			return fmt.Errorf("claims file not accessible: %w", err)
		}
	}
	return nil
}

// ValidateWithDSN additionally requires a database connection string.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or DATABASE_URL is required")
	}
	return nil
}
