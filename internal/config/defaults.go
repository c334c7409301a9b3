package config

const (
	defaultStagingDir       = "~/.local/share/video-combiner/staging"
	defaultLogDir           = "~/.local/share/video-combiner/logs"
	defaultQueueBackend     = "sheets"
	defaultQueueTimeout     = 30
	defaultWorksheet        = "JobQueue"
	defaultSheetsBaseURL    = "https://sheets.googleapis.com"
	defaultStorageBackend   = "drive"
	defaultDriveBaseURL     = "https://www.googleapis.com"
	defaultDriveUploadURL   = "https://www.googleapis.com"
	defaultDrivePageSize    = 20
	defaultMaxFileSizeMB    = 100
	defaultStorageTimeout   = 120
	defaultFFmpegBinary     = "ffmpeg"
	defaultFFprobeBinary    = "ffprobe"
	defaultVideoBitrate     = "1000k"
	defaultCombineTimeout   = 600
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Queue: Queue{
			Backend:        defaultQueueBackend,
			TimeoutSeconds: defaultQueueTimeout,
		},
		Sheets: Sheets{
			Worksheet: defaultWorksheet,
			BaseURL:   defaultSheetsBaseURL,
		},
		Storage: Storage{
			Backend:        defaultStorageBackend,
			BaseURL:        defaultDriveBaseURL,
			UploadBaseURL:  defaultDriveUploadURL,
			PageSize:       defaultDrivePageSize,
			MaxFileSizeMB:  defaultMaxFileSizeMB,
			TimeoutSeconds: defaultStorageTimeout,
		},
		Combine: Combine{
			FFmpegBinary:   defaultFFmpegBinary,
			FFprobeBinary:  defaultFFprobeBinary,
			VideoBitrate:   defaultVideoBitrate,
			TimeoutSeconds: defaultCombineTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
