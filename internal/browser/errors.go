package browser

import (
	"errors"
	"strings"
)

// ErrStaleNode indicates a node handle no longer matches the live DOM, which
// happens when the page re-renders between lookup and use.
var ErrStaleNode = errors.New("node is stale or detached from the document")

// ErrNotClickable indicates a click did not land, either because the target
// was obscured or not in a clickable state.
var ErrNotClickable = errors.New("element is not clickable")

// IsStale reports whether err came from using a node handle that the page has
// since re-rendered away.
func IsStale(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrStaleNode) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "could not find node") ||
		strings.Contains(msg, "node with given id") ||
		strings.Contains(msg, "detached from document")
}

// IsNotClickable reports whether err came from a click that could not land.
func IsNotClickable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotClickable) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not visible") ||
		strings.Contains(msg, "box model") ||
		strings.Contains(msg, "intercept")
}
