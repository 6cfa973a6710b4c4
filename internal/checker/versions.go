package checker

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/depwatch/depwatch/internal/log"
)

// nonRegistryPrefixes mark requirements that do not resolve against a
// registry version at all: local paths, workspace links, and VCS refs.
// Such requirements are always considered satisfied.
var nonRegistryPrefixes = []string{
	"file:",
	"link:",
	"portal:",
	"workspace:",
	"git:",
	"git+",
	"github:",
	"http://",
	"https://",
}

// Compatible reports whether an installed version satisfies a declared
// requirement. Caret and tilde ranges follow npm semantics. Anything that
// fails to parse is treated as incompatible rather than raising.
func Compatible(required, installed string) bool {
	required = strings.TrimSpace(required)
	for _, prefix := range nonRegistryPrefixes {
		if strings.HasPrefix(required, prefix) {
			return true
		}
	}

	constraint, err := semver.NewConstraint(required)
	if err != nil {
		log.Debugf("Unparseable version requirement %q: %v", required, err)
		return false
	}

	version, err := semver.NewVersion(strings.TrimPrefix(installed, "v"))
	if err != nil {
		log.Debugf("Unparseable installed version %q: %v", installed, err)
		return false
	}

	return constraint.Check(version)
}
