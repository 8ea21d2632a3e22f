// Package document turns raw book files into clean body text and metadata.
package document

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Unknown is the placeholder for metadata absent from the source text.
const Unknown = "Unknown"

// ErrEmptyDocument is returned for input with no text, or no text left after cleaning.
var ErrEmptyDocument = errors.New("document is empty")

// Metadata is the bibliographic header of a document.
type Metadata struct {
	Title    string
	Author   string
	Language string
	Year     int
}

var (
	titleRe    = regexp.MustCompile(`(?im)^[ \t]*title:[ \t]*(\S.*)$`)
	authorRe   = regexp.MustCompile(`(?im)^[ \t]*author:[ \t]*(\S.*)$`)
	languageRe = regexp.MustCompile(`(?im)^[ \t]*language:[ \t]*(\S.*)$`)
	yearRe     = regexp.MustCompile(`(?i)release date:[^\n]*?(\d{4})`)

	startMarkerRe = regexp.MustCompile(`(?i)\*\*\* *(START|BEGIN) OF (THE|THIS) PROJECT GUTENBERG`)
	endMarkerRe   = regexp.MustCompile(`(?im)^[^\n]*\*\*\* *END OF (THE|THIS) PROJECT GUTENBERG`)

	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// ExtractMetadata scans labeled header lines. The first match of each label wins.
func ExtractMetadata(raw string) Metadata {
	meta := Metadata{Title: Unknown, Author: Unknown, Language: Unknown}

	if m := titleRe.FindStringSubmatch(raw); m != nil {
		meta.Title = strings.TrimSpace(m[1])
	}
	if m := authorRe.FindStringSubmatch(raw); m != nil {
		meta.Author = strings.TrimSpace(m[1])
	}
	if m := languageRe.FindStringSubmatch(raw); m != nil {
		meta.Language = strings.TrimSpace(m[1])
	}
	if m := yearRe.FindStringSubmatch(raw); m != nil {
		meta.Year, _ = strconv.Atoi(m[1])
	}
	return meta
}

// StripBoilerplate removes the transcription header up to and including the
// start marker line, and the footer from the end marker line on. A missing
// marker leaves that side untouched.
func StripBoilerplate(raw string) string {
	text := raw
	if loc := startMarkerRe.FindStringIndex(text); loc != nil {
		rest := text[loc[1]:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			text = rest[nl+1:]
		} else {
			text = ""
		}
	}
	if loc := endMarkerRe.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}
	return text
}

// NormalizeWhitespace unifies line endings, collapses runs of blank lines to
// a single blank line and trims the whole text.
func NormalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Normalize extracts metadata from raw and returns the cleaned body text.
func Normalize(raw string) (string, Metadata, error) {
	if strings.TrimSpace(raw) == "" {
		return "", Metadata{}, ErrEmptyDocument
	}

	meta := ExtractMetadata(raw)
	clean := NormalizeWhitespace(StripBoilerplate(raw))
	if clean == "" {
		return "", meta, ErrEmptyDocument
	}
	return clean, meta, nil
}
