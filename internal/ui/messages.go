// Package ui provides the Bubble Tea TUI for mosaic.
package ui

import "github.com/abelbrown/mosaic/internal/browse"

// PageFetched is sent when an adapter fetch finishes. It carries the
// session id and generation captured at fetch start; the façade decides
// whether the result is still wanted.
type PageFetched struct {
	Result browse.Result
}

// statusCleared expires a transient status line message.
type statusCleared struct{}
