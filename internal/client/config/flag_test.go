package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd", "-a", "127.0.0.1:9090", "-k", "key", "-t", "3"}, expectPanic: false,
			expected: &Config{ServerEndpointAddr: "127.0.0.1:9090", CipherKey: "key", RequestTimeout: 3 * time.Second}},
		{name: "Test2 subcommand flags ignored", args: []string{"cmd", "verify", "-type", "api_token", "-user", "bob", "-a", "h:1"}, expectPanic: false,
			expected: &Config{ServerEndpointAddr: "h:1", RequestTimeout: 0}},
		{name: "Test3 incorrect timeout", args: []string{"cmd", "-a", "127.0.0.1:9090", "-t", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {

				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
