package preview

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		wantT    string
		wantDesc string
	}{
		{
			name:  "title only",
			html:  `<html><head><title>Webinar Recording</title></head><body></body></html>`,
			wantT: "Webinar Recording",
		},
		{
			name:     "meta description",
			html:     `<html><head><title>Guide</title><meta name="description" content="A hotel booking guide"></head></html>`,
			wantT:    "Guide",
			wantDesc: "A hotel booking guide",
		},
		{
			name:     "og tags win over plain tags",
			html:     `<html><head><title>Plain</title><meta property="og:title" content="OG Title"><meta name="description" content="plain desc"><meta property="og:description" content="og desc"></head></html>`,
			wantT:    "OG Title",
			wantDesc: "og desc",
		},
		{
			name:  "whitespace trimmed",
			html:  "<html><head><title>\n  Spaced Out  \n</title></head></html>",
			wantT: "Spaced Out",
		},
		{
			name: "no metadata at all",
			html: `<html><body><p>hello</p></body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.html)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.Title != tt.wantT {
				t.Errorf("Parse() title = %q, want %q", got.Title, tt.wantT)
			}
			if got.Description != tt.wantDesc {
				t.Errorf("Parse() description = %q, want %q", got.Description, tt.wantDesc)
			}
		})
	}
}

func TestFlattenHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text unchanged", "beach resort", "beach resort"},
		{"tags stripped", "<p>beach <b>resort</b></p>", "beach resort"},
		{"nested markup", "<div><ul><li>pool</li><li>spa</li></ul></div>", "pool spa"},
		{"whitespace collapsed", "beach\n\n   resort", "beach resort"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlattenHTML(tt.input)
			if got != tt.expected {
				t.Errorf("FlattenHTML() = %q, want %q", got, tt.expected)
			}
		})
	}
}
