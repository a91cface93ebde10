// internal/objectpath/objectpath.go
package objectpath

import (
	"errors"
	"strconv"
	"strings"

	"github.com/solatis/automata/internal/types"
)

/*
 * Object path resolution for decoded JSON.
 *
 * Paths are JSON pointers (RFC 6901): "/trigger/httpRequest/content",
 * "/variables/fruits/0". "" and "/" address the root. "~1" decodes to "/" and
 * "~0" to "~" within a segment.
 *
 * Key functions:
 *   - Parse: Splits and unescapes a pointer into segments
 *   - Resolve: Walks decoded JSON following the segments
 *
 * Segment semantics depend on the value being walked: on an object a segment
 * is a property name, on an array it must be a canonical decimal index
 * ("0", "12"; no sign, no leading zeros). Anything else is not found.
 */

var (
	// ErrNotFound indicates the path does not exist in the data.
	ErrNotFound = errors.New("path not found")

	// ErrInvalidPath indicates a malformed pointer.
	ErrInvalidPath = errors.New("invalid path")

	// ErrPathTooDeep indicates a pointer exceeds types.MaxPathDepth.
	ErrPathTooDeep = errors.New("path exceeds maximum depth")
)

// Pointer is a parsed object path.
type Pointer []string

// Parse parses a JSON pointer.
// Returns ErrInvalidPath for pointers not starting with "/" or with bad escapes.
// Returns ErrPathTooDeep for pointers exceeding types.MaxPathDepth.
func Parse(path string) (Pointer, error) {
	if path == "" || path == "/" {
		return Pointer{}, nil
	}
	if !strings.HasPrefix(path, "/") {
		return nil, ErrInvalidPath
	}

	raw := strings.Split(path[1:], "/")
	if len(raw) > types.MaxPathDepth {
		return nil, ErrPathTooDeep
	}

	segments := make(Pointer, len(raw))
	for i, seg := range raw {
		unescaped, err := unescape(seg)
		if err != nil {
			return nil, err
		}
		segments[i] = unescaped
	}
	return segments, nil
}

// unescape decodes ~1 and ~0, in that order per RFC 6901.
func unescape(seg string) (string, error) {
	if !strings.Contains(seg, "~") {
		return seg, nil
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] == '~' && (i+1 == len(seg) || (seg[i+1] != '0' && seg[i+1] != '1')) {
			return "", ErrInvalidPath
		}
	}
	seg = strings.ReplaceAll(seg, "~1", "/")
	return strings.ReplaceAll(seg, "~0", "~"), nil
}

// String renders the pointer with escaping.
func (p Pointer) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for _, seg := range p {
		b.WriteByte('/')
		seg = strings.ReplaceAll(seg, "~", "~0")
		b.WriteString(strings.ReplaceAll(seg, "/", "~1"))
	}
	return b.String()
}

// Resolve walks data following p and returns the located value.
// Returns ErrNotFound if the path does not exist. A present JSON null is found.
func Resolve(p Pointer, data any) (any, error) {
	if len(p) > types.MaxPathDepth {
		return nil, ErrPathTooDeep
	}
	return resolveRecursive(p, data)
}

// resolveRecursive traverses nested JSON structures one segment at a time.
func resolveRecursive(p Pointer, current any) (any, error) {
	if len(p) == 0 {
		return current, nil
	}

	seg := p[0]
	remaining := p[1:]

	switch v := current.(type) {
	case map[string]any:
		val, ok := v[seg]
		if !ok {
			return nil, ErrNotFound
		}
		return resolveRecursive(remaining, val)

	case []any:
		idx, ok := arrayIndex(seg)
		if !ok || idx >= len(v) {
			// "-" (one past the end) and out-of-range indices never resolve
			return nil, ErrNotFound
		}
		return resolveRecursive(remaining, v[idx])

	default:
		// Scalar or null value but path continues
		return nil, ErrNotFound
	}
}

// arrayIndex parses a canonical RFC 6901 array index.
func arrayIndex(seg string) (int, bool) {
	if seg == "" || (len(seg) > 1 && seg[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return n, true
}
