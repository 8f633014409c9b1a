// Package config loads, normalizes, and validates dive-tagger configuration.
//
// It supplies defaults, reads an optional TOML file from
// ~/.config/dive-tagger/config.toml or ./dive-tagger.toml, expands tilde
// paths, and honours environment fallbacks (DIVE_TAGGER_CONFIG,
// DIVE_TAGGER_JOURNAL, DIVE_TAGGER_EXIFTOOL).
package config
