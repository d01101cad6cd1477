package config

const (
	defaultSegmentDir              = "~/.local/share/lectern/segments"
	defaultTranscriptDir           = "~/transcripts"
	defaultLogDir                  = "~/.local/share/lectern/logs"
	defaultManifestPath            = "~/.local/share/lectern/manifest.json"
	defaultCookiesPath             = "~/.config/lectern/cookies.json"
	defaultWorkerCount             = 3
	defaultStaggerSeconds          = 5
	defaultPlaybackTimeoutSeconds  = 5400
	defaultDiscoveryTimeoutSeconds = 90
	defaultJobLimit                = 0
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SegmentDir:    defaultSegmentDir,
			TranscriptDir: defaultTranscriptDir,
			LogDir:        defaultLogDir,
			ManifestPath:  defaultManifestPath,
			CookiesPath:   defaultCookiesPath,
		},
		Workers: Workers{
			Count:                   defaultWorkerCount,
			StaggerSeconds:          defaultStaggerSeconds,
			PlaybackTimeoutSeconds:  defaultPlaybackTimeoutSeconds,
			DiscoveryTimeoutSeconds: defaultDiscoveryTimeoutSeconds,
			JobLimit:                defaultJobLimit,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
