package resolve

import (
	"strings"

	"github.com/wippyai/script-runtime/errors"
)

// Builtin claims requests under a reserved prefix and maps them 1:1.
// Builtin ids are permanently protected from invalidation; that policy
// lives in the runtime, keyed off the same prefix.
type Builtin struct {
	prefix string
}

// NewBuiltin creates the builtin resolver for the given reserved
// prefix, e.g. "builtin:".
func NewBuiltin(prefix string) *Builtin {
	return &Builtin{prefix: prefix}
}

func (b *Builtin) Name() string { return "builtin" }

func (b *Builtin) Resolve(parent, request string) (string, bool, error) {
	if b.prefix == "" || !strings.HasPrefix(request, b.prefix) {
		return "", false, nil
	}
	if request == b.prefix {
		return "", true, errors.MalformedRequest("builtin", parent, request, "empty builtin name")
	}
	return request, true, nil
}

// Relative claims "./" and "../" requests and resolves them against
// dirname(parent) with component-wise stack push/pop. A ".." that
// would pop past the root clamps at the root.
type Relative struct{}

func (Relative) Name() string { return "relative" }

func (Relative) Resolve(parent, request string) (string, bool, error) {
	claimed := request == "." || request == ".." ||
		strings.HasPrefix(request, "./") || strings.HasPrefix(request, "../")
	if !claimed {
		return "", false, nil
	}

	stack := splitSegments(Dirname(parent))
	for _, seg := range strings.Split(request, "/") {
		switch seg {
		case ".":
			// no-op
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			// Clamp at root: popping an empty stack stays at root.
		case "":
			return "", true, errors.MalformedRequest("relative", parent, request, "empty path segment")
		default:
			stack = append(stack, seg)
		}
	}

	if len(stack) == 0 {
		return "", true, errors.MalformedRequest("relative", parent, request, "resolves to the root itself")
	}
	return joinSegments(stack), true, nil
}

// Namespace claims "name:rest" requests for registered namespaces and
// maps them to a fixed root + mount + rest path.
type Namespace struct {
	root   string
	mounts map[string]string
}

// NewNamespace creates a namespace resolver. root may be empty; mounts
// maps a namespace name to the directory it mounts.
func NewNamespace(root string, mounts map[string]string) *Namespace {
	m := make(map[string]string, len(mounts))
	for k, v := range mounts {
		m[k] = v
	}
	return &Namespace{root: root, mounts: m}
}

func (n *Namespace) Name() string { return "namespace" }

func (n *Namespace) Resolve(parent, request string) (string, bool, error) {
	name, rest, found := strings.Cut(request, ":")
	if !found || name == "" {
		return "", false, nil
	}
	// Only claim marker syntax: no slash before the colon.
	if strings.ContainsRune(name, '/') {
		return "", false, nil
	}

	mount, ok := n.mounts[name]
	if !ok {
		return "", true, errors.MalformedRequest("namespace", parent, request, "unknown namespace "+strconvQuote(name))
	}
	if rest == "" {
		return "", true, errors.MalformedRequest("namespace", parent, request, "empty path after namespace marker")
	}

	segs := splitSegments(n.root)
	segs = append(segs, splitSegments(mount)...)
	segs = append(segs, splitSegments(rest)...)
	for _, s := range segs {
		if s == "" {
			return "", true, errors.MalformedRequest("namespace", parent, request, "empty path segment")
		}
	}
	return joinSegments(segs), true, nil
}

func strconvQuote(s string) string {
	return `"` + s + `"`
}

// PassThrough is the terminal resolver: it always claims and returns
// the request unchanged.
type PassThrough struct{}

func (PassThrough) Name() string { return "pass-through" }

func (PassThrough) Resolve(parent, request string) (string, bool, error) {
	return request, true, nil
}
