package i18n

import (
	"sort"
	"strings"
)

// Dictionary is one locale's tree of string leaves, addressed by dotted path.
type Dictionary map[string]any

// Lookup walks path node by node. It fails on any missing node and on paths
// that end at a subtree instead of a string leaf.
func (d Dictionary) Lookup(path string) (string, bool) {
	if d == nil || path == "" {
		return "", false
	}

	var node any = map[string]any(d)
	for _, key := range strings.Split(path, ".") {
		branch, ok := asBranch(node)
		if !ok {
			return "", false
		}
		node, ok = branch[key]
		if !ok {
			return "", false
		}
	}

	leaf, ok := node.(string)
	return leaf, ok
}

// Resolve returns the translation for path, or path itself when it does not resolve.
func Resolve(d Dictionary, path string) string {
	if text, ok := d.Lookup(path); ok {
		return text
	}
	return path
}

// Paths lists every string leaf path in sorted order.
func (d Dictionary) Paths() []string {
	var paths []string
	collectPaths(map[string]any(d), "", &paths)
	sort.Strings(paths)
	return paths
}

func collectPaths(node map[string]any, prefix string, out *[]string) {
	for key, child := range node {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if branch, ok := asBranch(child); ok {
			collectPaths(branch, path, out)
			continue
		}
		if _, ok := child.(string); ok {
			*out = append(*out, path)
		}
	}
}

func asBranch(node any) (map[string]any, bool) {
	switch n := node.(type) {
	case map[string]any:
		return n, true
	case Dictionary:
		return n, true
	default:
		return nil, false
	}
}
