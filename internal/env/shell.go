package env

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Export is a single environment assignment to hand back to the shell.
type Export struct {
	Name  string
	Value string
}

// String renders the assignment as a POSIX shell export line.
func (e Export) String() string {
	return fmt.Sprintf("export %s=%s", e.Name, quote(e.Value))
}

// Activate computes the exports needed to point the caller's shell at
// javaHome. Only variables whose value changes are returned. Any PATH entry
// below one of the managed roots is dropped before javaHome/bin is prepended.
func Activate(p Provider, javaHome string, managedRoots ...string) []Export {
	var out []Export

	if p.Getenv("JAVA_HOME") != javaHome {
		out = append(out, Export{Name: "JAVA_HOME", Value: javaHome})
	}

	current := p.Getenv("PATH")
	updated := updatePath(p, current, joinPath(p, javaHome, "bin"), managedRoots)
	if updated != current {
		out = append(out, Export{Name: "PATH", Value: updated})
	}

	return out
}

// updatePath removes stale managed entries and puts javaBin first.
func updatePath(p Provider, currentPath, javaBin string, managedRoots []string) string {
	sep := listSeparator(p)
	newPaths := []string{javaBin}

	for _, entry := range strings.Split(currentPath, sep) {
		entry = strings.TrimSpace(entry)
		if entry == "" || entry == javaBin {
			continue
		}
		if underAny(p, entry, managedRoots) {
			continue
		}
		newPaths = append(newPaths, entry)
	}

	return strings.Join(newPaths, sep)
}

func underAny(p Provider, entry string, roots []string) bool {
	for _, root := range roots {
		if root == "" {
			continue
		}
		if hasPathPrefix(p, entry, root) {
			return true
		}
	}
	return false
}

func hasPathPrefix(p Provider, path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if IsWindows(p) {
		path, root = strings.ToLower(path), strings.ToLower(root)
	}
	if path == root {
		return true
	}
	return strings.HasPrefix(path, strings.TrimRight(root, `/\`)+pathSeparator(p))
}

func listSeparator(p Provider) string {
	if IsWindows(p) {
		return ";"
	}
	return ":"
}

func pathSeparator(p Provider) string {
	if IsWindows(p) {
		return `\`
	}
	return "/"
}

func joinPath(p Provider, elem ...string) string {
	return strings.Join(elem, pathSeparator(p))
}

var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "`", "\\`")

func quote(s string) string {
	return `"` + quoter.Replace(s) + `"`
}
