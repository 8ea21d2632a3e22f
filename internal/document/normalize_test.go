package document

import (
	"errors"
	"strings"
	"testing"
)

const gutenbergSample = "The Project Gutenberg eBook of Emma\r\n" +
	"\r\n" +
	"Title: Emma\r\n" +
	"\r\n" +
	"Author: Jane Austen\r\n" +
	"\r\n" +
	"Release date: August 1, 1994 [eBook #158]\r\n" +
	"\r\n" +
	"Language: English\r\n" +
	"\r\n" +
	"*** START OF THE PROJECT GUTENBERG EBOOK EMMA ***\r\n" +
	"\r\n" +
	"VOLUME I\r\n" +
	"\r\n\r\n\r\n\r\n" +
	"Emma Woodhouse, handsome, clever, and rich.\r\n" +
	"\r\n" +
	"*** END OF THE PROJECT GUTENBERG EBOOK EMMA ***\r\n" +
	"\r\n" +
	"Updated editions will replace the previous one.\r\n"

func TestNormalize(t *testing.T) {
	clean, meta, err := Normalize(gutenbergSample)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	want := "VOLUME I\n\nEmma Woodhouse, handsome, clever, and rich."
	if clean != want {
		t.Errorf("Normalize() text = %q, want %q", clean, want)
	}

	wantMeta := Metadata{Title: "Emma", Author: "Jane Austen", Language: "English", Year: 1994}
	if meta != wantMeta {
		t.Errorf("Normalize() metadata = %+v, want %+v", meta, wantMeta)
	}
}

func TestExtractMetadata(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Metadata
	}{
		{
			name: "no header uses defaults",
			raw:  "Just some prose without any labels.",
			want: Metadata{Title: Unknown, Author: Unknown, Language: Unknown, Year: 0},
		},
		{
			name: "case insensitive and trimmed",
			raw:  "TITLE:   Moby Dick   \nauthor:\tHerman Melville\n",
			want: Metadata{Title: "Moby Dick", Author: "Herman Melville", Language: Unknown},
		},
		{
			name: "first match wins",
			raw:  "Title: First\nTitle: Second\n",
			want: Metadata{Title: "First", Author: Unknown, Language: Unknown},
		},
		{
			name: "year from release line",
			raw:  "Release Date: March, 2001 [EBook #2701]\nMost recently updated: 2021",
			want: Metadata{Title: Unknown, Author: Unknown, Language: Unknown, Year: 2001},
		},
		{
			name: "release line without year",
			raw:  "Release date: unknown\nLanguage: French",
			want: Metadata{Title: Unknown, Author: Unknown, Language: "French"},
		},
		{
			name: "label must start the line",
			raw:  "The Title: is not a header\n",
			want: Metadata{Title: Unknown, Author: Unknown, Language: Unknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractMetadata(tt.raw); got != tt.want {
				t.Errorf("ExtractMetadata() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStripBoilerplate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "no markers leaves text untouched",
			raw:  "header\nbody\nfooter",
			want: "header\nbody\nfooter",
		},
		{
			name: "start marker only",
			raw:  "header\n*** START OF THIS PROJECT GUTENBERG EBOOK X ***\nbody\nfooter",
			want: "body\nfooter",
		},
		{
			name: "begin phrasing",
			raw:  "header\n*** BEGIN OF THE PROJECT GUTENBERG EBOOK X ***\nbody",
			want: "body",
		},
		{
			name: "end marker only",
			raw:  "header\nbody\n*** END OF THE PROJECT GUTENBERG EBOOK X ***\nlicense",
			want: "header\nbody\n",
		},
		{
			name: "lowercase markers",
			raw:  "h\n*** start of the project gutenberg ebook ***\nbody\n*** end of the project gutenberg ebook ***\nf",
			want: "body\n",
		},
		{
			name: "start marker on last line",
			raw:  "header\n*** START OF THE PROJECT GUTENBERG EBOOK X ***",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripBoilerplate(tt.raw); got != tt.want {
				t.Errorf("StripBoilerplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "crlf", in: "a\r\nb", want: "a\nb"},
		{name: "bare cr", in: "a\rb", want: "a\nb"},
		{name: "three newlines collapse", in: "a\n\n\nb", want: "a\n\nb"},
		{name: "many newlines collapse", in: "a\n\n\n\n\n\nb", want: "a\n\nb"},
		{name: "single blank line kept", in: "a\n\nb", want: "a\n\nb"},
		{name: "trim", in: "  \n a \n  ", want: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeWhitespace(tt.in); got != tt.want {
				t.Errorf("NormalizeWhitespace() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalize_Empty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "whitespace", raw: " \n\t\r\n"},
		{name: "nothing between markers", raw: "Title: X\n*** START OF THE PROJECT GUTENBERG EBOOK ***\n\n*** END OF THE PROJECT GUTENBERG EBOOK ***\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Normalize(tt.raw)
			if !errors.Is(err, ErrEmptyDocument) {
				t.Errorf("Normalize() error = %v, want ErrEmptyDocument", err)
			}
		})
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	a, metaA, _ := Normalize(gutenbergSample)
	b, metaB, _ := Normalize(gutenbergSample)
	if a != b || metaA != metaB {
		t.Error("Normalize() should be a pure function of its input")
	}
	if strings.Contains(a, "\r") {
		t.Error("Normalize() should not leave carriage returns")
	}
}
