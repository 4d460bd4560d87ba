// Package normalize folds map and player names into canonical comparison keys.
// Replay files carry decorated variants of both ("Xel'Naga Caverns TSL3",
// "Fredo.746") that must compare equal to the plain scheduled names.
package normalize

import (
	"regexp"
	"strings"
)

var (
	// Tournament and edition tokens stripped from map names. Whole words
	// only, so "These Caverns" keeps its "The".
	mapTokens = regexp.MustCompile(`(?i)\b(?:TSL3|TSL|GSL|MLG|SE|LE|RE|The)\b`)

	nonLetters = regexp.MustCompile(`[^A-Za-z ]`)
	spaceRuns  = regexp.MustCompile(` +`)

	// Battle.net appends a numeric discriminator to player names.
	discriminator = regexp.MustCompile(`\.\d+$`)
)

// MapName canonicalizes a map name: drop tournament tokens, drop anything
// outside letters and spaces, collapse space runs, lowercase, trim.
func MapName(name string) string {
	s := mapTokens.ReplaceAllString(name, "")
	s = nonLetters.ReplaceAllString(s, "")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(strings.ToLower(s))
}

// PlayerName canonicalizes a player name: strip a trailing ".NNN"
// discriminator, then lowercase. Interior dots stay put.
func PlayerName(name string) string {
	return strings.ToLower(discriminator.ReplaceAllString(name, ""))
}
