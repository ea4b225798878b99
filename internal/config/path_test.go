package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("FINANCEIRO_TEST_DIR", "/data")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "absolute untouched", input: "/var/lib/financeiro.db", expected: "/var/lib/financeiro.db"},
		{name: "bare tilde", input: "~", expected: home},
		{name: "tilde prefix", input: "~/.local/share/financeiro.db", expected: filepath.Join(home, ".local/share/financeiro.db")},
		{name: "env var", input: "$FINANCEIRO_TEST_DIR/financeiro.db", expected: "/data/financeiro.db"},
		{name: "tilde mid-path untouched", input: "/tmp/~user/db", expected: "/tmp/~user/db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandPath(tt.input))
		})
	}
}
