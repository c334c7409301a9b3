package config

import (
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeQueue()
	c.normalizeSheets()
	c.normalizeStorage()
	c.normalizeCombine()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	staging, err := expandPath(c.Paths.StagingDir)
	if err != nil {
		return err
	}
	c.Paths.StagingDir = staging

	logDir, err := expandPath(c.Paths.LogDir)
	if err != nil {
		return err
	}
	c.Paths.LogDir = logDir

	if strings.TrimSpace(c.Queue.DBPath) != "" {
		dbPath, err := expandPath(c.Queue.DBPath)
		if err != nil {
			return err
		}
		c.Queue.DBPath = dbPath
	}
	return nil
}

func (c *Config) normalizeQueue() {
	c.Queue.Backend = strings.ToLower(strings.TrimSpace(c.Queue.Backend))
	if c.Queue.Backend == "" {
		c.Queue.Backend = defaultQueueBackend
	}
	if c.Queue.TimeoutSeconds <= 0 {
		c.Queue.TimeoutSeconds = defaultQueueTimeout
	}
}

// CI supplies secrets through the environment; env values win over the file
// so checked-in configs never carry credentials.
func (c *Config) normalizeSheets() {
	if v := strings.TrimSpace(os.Getenv("SPREADSHEET_ID")); v != "" {
		c.Sheets.SpreadsheetID = v
	}
	if v := strings.TrimSpace(os.Getenv("SHEETS_API_TOKEN")); v != "" {
		c.Sheets.APIToken = v
	}
	if strings.TrimSpace(c.Sheets.Worksheet) == "" {
		c.Sheets.Worksheet = defaultWorksheet
	}
	c.Sheets.BaseURL = strings.TrimRight(strings.TrimSpace(c.Sheets.BaseURL), "/")
	if c.Sheets.BaseURL == "" {
		c.Sheets.BaseURL = defaultSheetsBaseURL
	}
}

func (c *Config) normalizeStorage() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultStorageBackend
	}
	if v := strings.TrimSpace(os.Getenv("DRIVE_API_TOKEN")); v != "" {
		c.Storage.APIToken = v
	}
	c.Storage.BaseURL = strings.TrimRight(strings.TrimSpace(c.Storage.BaseURL), "/")
	if c.Storage.BaseURL == "" {
		c.Storage.BaseURL = defaultDriveBaseURL
	}
	c.Storage.UploadBaseURL = strings.TrimRight(strings.TrimSpace(c.Storage.UploadBaseURL), "/")
	if c.Storage.UploadBaseURL == "" {
		c.Storage.UploadBaseURL = c.Storage.BaseURL
	}
	if c.Storage.PageSize <= 0 {
		c.Storage.PageSize = defaultDrivePageSize
	}
	if c.Storage.MaxFileSizeMB <= 0 {
		c.Storage.MaxFileSizeMB = defaultMaxFileSizeMB
	}
	if c.Storage.TimeoutSeconds <= 0 {
		c.Storage.TimeoutSeconds = defaultStorageTimeout
	}
}

func (c *Config) normalizeCombine() {
	if strings.TrimSpace(c.Combine.FFmpegBinary) == "" {
		c.Combine.FFmpegBinary = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Combine.FFprobeBinary) == "" {
		c.Combine.FFprobeBinary = defaultFFprobeBinary
	}
	if strings.TrimSpace(c.Combine.VideoBitrate) == "" {
		c.Combine.VideoBitrate = defaultVideoBitrate
	}
	if c.Combine.TimeoutSeconds <= 0 {
		c.Combine.TimeoutSeconds = defaultCombineTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
