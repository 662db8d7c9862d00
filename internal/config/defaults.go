package config

const (
	defaultLibraryDir         = "~/movies"
	defaultStagingDir         = "~/.local/share/trailhound/staging"
	defaultLogDir             = "~/.local/share/trailhound/logs"
	defaultTMDBBaseURL        = "https://api.themoviedb.org/3"
	defaultTMDBLanguage       = "en-US"
	defaultTrailerFolderName  = "trailers"
	defaultPreferredQuality   = "high"
	defaultDownloadTimeout    = 300
	defaultItemDelaySeconds   = 2
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultMaxDurationSeconds = 0
)

// QualityTiers lists the accepted preferred_quality values.
var QualityTiers = []string{"low", "medium", "high"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		Trailers: Trailers{
			FolderName:         defaultTrailerFolderName,
			PreferredQuality:   defaultPreferredQuality,
			MaxDurationSeconds: defaultMaxDurationSeconds,
		},
		Downloader: Downloader{
			TimeoutSeconds: defaultDownloadTimeout,
		},
		Workflow: Workflow{
			ItemDelaySeconds: defaultItemDelaySeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
