package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompatible(t *testing.T) {
	tests := []struct {
		name      string
		required  string
		installed string
		want      bool
	}{
		{"caret within range", "^1.2.0", "1.9.0", true},
		{"caret major bump", "^1.2.0", "2.0.0", false},
		{"caret below range", "^1.2.0", "0.9.0", false},
		{"tilde within patch range", "~1.2.0", "1.2.9", true},
		{"tilde minor bump", "~1.2.0", "1.3.0", false},
		{"exact match", "4.17.21", "4.17.21", true},
		{"exact mismatch", "4.17.21", "4.17.20", false},
		{"leading v on installed", "^1.0.0", "v1.4.2", true},
		{"local path always compatible", "file:../shared", "0.0.0", true},
		{"vcs ref always compatible", "git+https://github.com/u/r.git", "whatever", true},
		{"workspace protocol always compatible", "workspace:*", "1.0.0", true},
		{"github shorthand always compatible", "github:u/r", "1.0.0", true},
		{"unparseable requirement fails closed", "not-a-version", "1.0.0", false},
		{"unparseable installed fails closed", "^1.0.0", "not-a-version", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compatible(tt.required, tt.installed))
		})
	}
}
