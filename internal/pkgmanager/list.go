package pkgmanager

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"

	"github.com/depwatch/depwatch/internal/log"
)

// yarnEvent is one line of `yarn list --json` output. Yarn emits a stream
// of newline-delimited events; the package listing arrives as a single
// "tree" event.
type yarnEvent struct {
	Type string `json:"type"`
	Data struct {
		Trees []yarnTree `json:"trees"`
	} `json:"data"`
}

type yarnTree struct {
	Name     string     `json:"name"`
	Children []yarnTree `json:"children"`
}

// parseYarnList extracts installed packages from yarn's event stream.
// Tree entries are "name@version" strings.
func parseYarnList(output []byte) map[string]string {
	installed := map[string]string{}

	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "{") {
			continue
		}
		var ev yarnEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue
		}
		if ev.Type != "tree" {
			continue
		}
		collectYarnTrees(ev.Data.Trees, installed)
	}

	if len(installed) == 0 {
		log.Debug("yarn list output contained no tree entries")
	}
	return installed
}

func collectYarnTrees(trees []yarnTree, installed map[string]string) {
	for _, tree := range trees {
		if name, version, ok := splitNameVersion(tree.Name); ok {
			installed[name] = version
		}
		collectYarnTrees(tree.Children, installed)
	}
}

// splitNameVersion splits a "name@version" entry on the last "@" so that
// scoped names like "@scope/pkg@1.2.3" keep their leading "@".
func splitNameVersion(entry string) (name, version string, ok bool) {
	idx := strings.LastIndex(entry, "@")
	if idx <= 0 {
		return "", "", false
	}
	return entry[:idx], entry[idx+1:], true
}

// parseDependencyMap handles the flat JSON shape shared by npm and pnpm:
// a "dependencies" object mapping package name to an object with a
// "version" field. pnpm wraps the object in a one-element array.
func parseDependencyMap(output []byte) map[string]string {
	type listing struct {
		Dependencies map[string]struct {
			Version string `json:"version"`
		} `json:"dependencies"`
	}

	trimmed := bytes.TrimSpace(output)
	// Tolerate warning text printed before the JSON document.
	if idx := firstJSONStart(trimmed); idx > 0 {
		trimmed = trimmed[idx:]
	}

	var entries []listing
	if bytes.HasPrefix(trimmed, []byte("[")) {
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			log.Debugf("Unparseable package listing: %v", err)
			return map[string]string{}
		}
	} else {
		var single listing
		if err := json.Unmarshal(trimmed, &single); err != nil {
			log.Debugf("Unparseable package listing: %v", err)
			return map[string]string{}
		}
		entries = []listing{single}
	}

	installed := map[string]string{}
	for _, entry := range entries {
		for name, info := range entry.Dependencies {
			installed[name] = info.Version
		}
	}
	return installed
}

func firstJSONStart(b []byte) int {
	obj := bytes.IndexByte(b, '{')
	arr := bytes.IndexByte(b, '[')
	switch {
	case obj < 0:
		return arr
	case arr < 0:
		return obj
	case arr < obj:
		return arr
	default:
		return obj
	}
}
