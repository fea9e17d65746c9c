package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"collapses runs", "  a \n\t b  ", "a b"},
		{"bidi marks", "\u200eJane\u200f Doe", "Jane Doe"},
		{"non-breaking space", "2023\u00a0May\u202f10", "2023 May 10"},
		{"zero width", "ka\u200bbap", "kabap"},
		{"em spaces", "Jane\u2003\u2003Doe", "Jane Doe"},
		{"ideographic space", "SAP\u3000HANA\u2028", "SAP HANA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Whitespace(tt.in))
		})
	}
}

func TestBlock(t *testing.T) {
	assert.Equal(t, "a b\n\nc", Block("a  \u00a0 b\n\n\n\nc\u200b"))
	assert.Equal(t, "line one\nline two", Block("\n line one\nline two \n"))
	assert.Equal(t, "", Block(" \n\t\n "))
	assert.Equal(t, "a b\nc", Block("a\u2003\u3000b\nc"))
}
