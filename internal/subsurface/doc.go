// Package subsurface reads dive logs exported by Subsurface (.ssrf) into the
// flat models.Logbook used by the matcher.
package subsurface
