package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "separate value",
			args:         []string{"-l", "3", "-a", "localhost"},
			allowedFlags: []string{"-l"},
			want:         []string{"-l", "3"},
		},
		{
			name:         "equals form",
			args:         []string{"-w=90", "-a", "localhost"},
			allowedFlags: []string{"-w"},
			want:         []string{"-w=90"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "trailing flag without value",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "next dash token is not a value",
			args:         []string{"-c", "-config=alt.json"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-c", "-config=alt.json"},
		},
		{
			name:         "repeated flag keeps order",
			args:         []string{"-k", "one", "-k", "two"},
			allowedFlags: []string{"-k"},
			want:         []string{"-k", "one", "-k", "two"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestJSONConfigPath(t *testing.T) {
	assert.Equal(t, "/etc/credkeeper.json", JSONConfigPath([]string{"-c", "/etc/credkeeper.json"}))
	assert.Equal(t, "/tmp/b.json", JSONConfigPath([]string{"-config", "/tmp/a.json", "-c", "/tmp/b.json"}))
	assert.Empty(t, JSONConfigPath([]string{"-l", "3"}))
}

func TestSubcommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantName string
		wantRest []string
	}{
		{name: "leading word", args: []string{"verify", "-user", "alice"}, wantName: "verify", wantRest: []string{"-user", "alice"}},
		{name: "flags first", args: []string{"-a", "host:1", "passwd", "-bootstrap"}, wantName: "passwd", wantRest: []string{"-a", "host:1", "-bootstrap"}},
		{name: "equals flag first", args: []string{"-a=host:1", "hash"}, wantName: "hash", wantRest: []string{"-a=host:1"}},
		{name: "none", args: []string{"-a", "host:1"}, wantName: "", wantRest: []string{"-a", "host:1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, rest := Subcommand(tt.args)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}
