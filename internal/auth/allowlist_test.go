package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminAllowList(t *testing.T) {
	list := ParseAdminAllowList(" Admin@Example.com, ops@example.com,,")

	tests := []struct {
		email string
		want  bool
	}{
		{"admin@example.com", true},
		{"ADMIN@example.com", true},
		{" ops@example.com ", true},
		{"investor@example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, list.Contains(tt.email))
		})
	}

	assert.Equal(t, 2, list.Len())
	assert.False(t, ParseAdminAllowList("").Contains("admin@example.com"))
}
