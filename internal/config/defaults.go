package config

const (
	defaultOutputDir      = "~/.local/share/newscast/audio"
	defaultContentDir     = "~/.local/share/newscast/content"
	defaultLogDir         = "~/.local/share/newscast/logs"
	defaultStateDir       = "~/.local/share/newscast/state"
	defaultEpisodesSubdir = "episodes"
	defaultFeedFilename   = "feed.xml"

	defaultPodcastTitle       = "AI Auto Podcast"
	defaultPodcastDescription = "An automatically generated technology news podcast"
	defaultPodcastAuthor      = "Auto Podcast Generator"
	defaultPodcastLanguage    = "ja"
	defaultPodcastCategory    = "Technology"

	defaultMaxArticlesPerFeed  = 5
	defaultMaxArticles         = 5
	defaultWindowHours         = 24
	defaultSimilarityThreshold = 0.75
	defaultSourceUserAgent     = "newscast/1.0 (+https://github.com/newscast)"
	defaultSourceTimeout       = 15

	defaultLLMBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions"
	defaultLLMModel   = "gemini-2.5-flash"
	defaultLLMTimeout = 120

	defaultTTSBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultTTSModel     = "gemini-2.5-flash-preview-tts"
	defaultHostVoice    = "Kore"
	defaultGuestVoice   = "Charon"
	defaultTTSTimeout   = 300
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultLogRetention = 60

	defaultRetentionDays = 30
)

var defaultFeedURLs = []string{
	"https://rss.itmedia.co.jp/rss/2.0/news_bursts.xml",
	"https://www.publickey1.jp/atom.xml",
	"https://gigazine.net/news/rss_2.0/",
	"https://japan.cnet.com/rss/index.rdf",
	"https://gihyo.jp/feed/rss2",
	"https://www3.nhk.or.jp/rss/news/cat5.xml",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Podcast: Podcast{
			Title:       defaultPodcastTitle,
			Description: defaultPodcastDescription,
			Author:      defaultPodcastAuthor,
			Language:    defaultPodcastLanguage,
			Category:    defaultPodcastCategory,
		},
		Paths: Paths{
			OutputDir:      defaultOutputDir,
			ContentDir:     defaultContentDir,
			LogDir:         defaultLogDir,
			StateDir:       defaultStateDir,
			EpisodesSubdir: defaultEpisodesSubdir,
			FeedFilename:   defaultFeedFilename,
		},
		Sources: Sources{
			FeedURLs:            append([]string{}, defaultFeedURLs...),
			MaxArticlesPerFeed:  defaultMaxArticlesPerFeed,
			MaxArticles:         defaultMaxArticles,
			WindowHours:         defaultWindowHours,
			SimilarityThreshold: defaultSimilarityThreshold,
			UserAgent:           defaultSourceUserAgent,
			TimeoutSeconds:      defaultSourceTimeout,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeout,
		},
		TTS: TTS{
			BaseURL:        defaultTTSBaseURL,
			Model:          defaultTTSModel,
			HostVoice:      defaultHostVoice,
			GuestVoice:     defaultGuestVoice,
			TimeoutSeconds: defaultTTSTimeout,
		},
		Retention: Retention{
			Days: defaultRetentionDays,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetention,
		},
	}
}
