// Package parser extracts structured fields from scene-style release titles.
package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// ParsedTitle holds the fields recovered from a release title. Fields that
// were not present in the title are left at their zero value.
type ParsedTitle struct {
	CleanTitle   string
	ReleaseGroup string
	Version      string
	Platform     string
	Year         int
	Original     string
}

var (
	// Release group suffix: -GROUP anchored to the end of the title.
	releaseGroupRegexp = regexp.MustCompile(`-([A-Za-z0-9]+)$`)

	// Scene version markers: v1.0, v1.2.3, 2.1.3 after a separator.
	versionRegexp = regexp.MustCompile(`(?i)[._\s]v?(\d+\.\d+(?:\.\d+)*)`)

	// Four-digit year bounded by separators or brackets: (2023) or .2023.
	yearRegexp = regexp.MustCompile(`[.\s(]((?:19|20)\d{2})[.\s)]`)

	// Known platform tags bounded by separators or brackets: [PC], .NSW., (Switch).
	platformRegexp = regexp.MustCompile(`(?i)[\[.\s(](PC|PS5|PS4|PS3|Xbox|XboxOne|XSX|Switch|NSW|NES|SNES|N64|GBA|GBC|NDS|3DS|PSP|PSX|Wii|WiiU|Genesis|Dreamcast)[\].\s)]`)

	separatorRegexp        = regexp.MustCompile(`[._]`)
	whitespaceRegexp       = regexp.MustCompile(`\s+`)
	trailingBracketsRegexp = regexp.MustCompile(`[\[\]()]+\s*$`)
)

// Parse is total: every input, including the empty string, produces a result
// and never an error. Version extraction runs before year extraction so a
// token like "v1.6" is never misread as a year.
func Parse(raw string) ParsedTitle {
	result := ParsedTitle{Original: raw}

	working := strings.TrimSpace(raw)
	if working == "" {
		return result
	}

	// The group suffix goes first so it cannot confuse the other matchers.
	if m := releaseGroupRegexp.FindStringSubmatchIndex(working); m != nil {
		result.ReleaseGroup = working[m[2]:m[3]]
		working = strings.TrimRight(working[:m[0]], " ")
	}

	versionMatch := versionRegexp.FindStringSubmatchIndex(working)
	if versionMatch != nil {
		result.Version = working[versionMatch[2]:versionMatch[3]]
	}

	if m := yearRegexp.FindStringSubmatch(working); m != nil {
		if year, err := strconv.Atoi(m[1]); err == nil {
			result.Year = year
		}
	}

	if m := platformRegexp.FindStringSubmatch(working); m != nil {
		result.Platform = strings.ToUpper(m[1])
	}

	clean := working

	// Remove the version span, then blank out the year and platform tags with
	// their surrounding separators.
	if versionMatch != nil {
		clean = clean[:versionMatch[0]] + clean[versionMatch[1]:]
	}
	clean = yearRegexp.ReplaceAllString(clean, " ")
	clean = platformRegexp.ReplaceAllString(clean, " ")

	clean = separatorRegexp.ReplaceAllString(clean, " ")
	clean = whitespaceRegexp.ReplaceAllString(clean, " ")
	clean = strings.TrimSpace(clean)
	clean = strings.TrimSpace(trailingBracketsRegexp.ReplaceAllString(clean, ""))

	result.CleanTitle = clean

	return result
}
