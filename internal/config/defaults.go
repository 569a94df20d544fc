package config

const (
	defaultFilesDir            = "~/.local/share/vidingest/files"
	defaultDataDir             = "~/.local/share/vidingest"
	defaultLogDir              = "~/.local/share/vidingest/logs"
	defaultFrameIntervalSec    = 2.0
	defaultMaxFrames           = 12
	defaultSegmentDurationSec  = 20.0
	defaultMaxAudioDurationSec = 600.0
	defaultAudioLanguage       = "en"
	defaultFFmpeg              = "ffmpeg"
	defaultFFprobe             = "ffprobe"
	defaultProbeTimeout        = 30
	defaultCacheMaxGiB         = 20
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir(),
			FilesDir: defaultFilesDir,
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
		},
		Ingest: Ingest{
			FrameIntervalSec:    defaultFrameIntervalSec,
			MaxFrames:           defaultMaxFrames,
			SegmentDurationSec:  defaultSegmentDurationSec,
			MaxAudioDurationSec: defaultMaxAudioDurationSec,
			AudioLanguage:       defaultAudioLanguage,
		},
		Tools: Tools{
			FFmpeg:       defaultFFmpeg,
			FFprobe:      defaultFFprobe,
			ProbeTimeout: defaultProbeTimeout,
		},
		Cache: Cache{
			MaxGiB:    defaultCacheMaxGiB,
			AutoPrune: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
