package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateCombine(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateQueue() error {
	switch c.Queue.Backend {
	case "sheets":
		if strings.TrimSpace(c.Sheets.SpreadsheetID) == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/video-combiner/config.toml"
			}
			return fmt.Errorf("sheets.spreadsheet_id is required. Set SPREADSHEET_ID env var or edit %s (create with 'video-combiner config init')", defaultPath)
		}
		if strings.TrimSpace(c.Sheets.APIToken) == "" {
			return errors.New("sheets.api_token is required. Set SHEETS_API_TOKEN env var or add it to the config file")
		}
	case "sqlite":
		// db path defaults under log_dir
	default:
		return fmt.Errorf("queue.backend must be \"sheets\" or \"sqlite\", got %q", c.Queue.Backend)
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "drive":
		if strings.TrimSpace(c.Storage.APIToken) == "" {
			return errors.New("storage.api_token is required. Set DRIVE_API_TOKEN env var or add it to the config file")
		}
	case "local":
		// folder ids are directory paths, nothing to validate up front
	default:
		return fmt.Errorf("storage.backend must be \"drive\" or \"local\", got %q", c.Storage.Backend)
	}
	return nil
}

func (c *Config) validateCombine() error {
	if c.Combine.TimeoutSeconds < 30 {
		return errors.New("combine.timeout_seconds must be at least 30")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
