// Package runner orchestrates a tagging run: it reads each photo's capture
// time, asks the matcher for a decision, applies matched sites through a
// MetadataWriter, and aggregates a Report.
package runner
