package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		name string
		ok   bool
	}{
		{"/start", "start", true},
		{"/book 3 19.10.2026 10:00", "book", true},
		{"/Book@tutor_bot 3", "book", true},
		{"просто текст", "", false},
		{"/", "", false},
		{"/@tutor_bot", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			name, ok := parseCommand(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
		})
	}
}
