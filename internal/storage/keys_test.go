package storage

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"deck.pdf", "deck.pdf"},
		{"Q3 report (final).xlsx", "Q3-report-final-.xlsx"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\memo.docx`, "memo.docx"},
		{"", "file"},
		{"...", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestKeys(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	assert.Equal(t, "files/1700000000123-deck.pdf", FileKey(now, "deck.pdf"))

	key, err := ImageKey(now)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^uploads/1700000000123-[a-z0-9]{6}\.jpg$`), key)
}
