package config

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			JournalDB: "~/.local/share/dive-tagger/journal.db",
			LogDir:    "",
		},
		Media: Media{
			Recursive:      false,
			ExcludeFolders: []string{},
		},
		Exiftool: Exiftool{
			Binary:         "exiftool",
			TimeoutSeconds: 30,
		},
		Writer: Writer{
			EmbedGPS:   true,
			XMPSidecar: true,
		},
		Resolution: Resolution{
			Policy:          "interactive",
			RememberChoices: false,
		},
		Matching: Matching{
			Timezone: "Local",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
