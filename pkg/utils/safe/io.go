package safe

import (
	"context"
	"encoding/json"
	"io"

	"github.com/secmon-lab/themis/pkg/utils/logging"
)

// Close closes c and logs a failure under the given resource name.
// A nil closer is ignored.
func Close(ctx context.Context, c io.Closer, resource string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("failed to close resource", "resource", resource, "error", err)
	}
}

// Write writes data and logs failed or short writes. Response writers cannot
// report errors to the peer once the status line is sent.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	n, err := w.Write(data)
	if err != nil || n < len(data) {
		logging.From(ctx).Warn("failed to write response",
			"written", n,
			"size", len(data),
			"error", err,
		)
	}
}

// WriteJSON encodes v to w followed by a newline
func WriteJSON(ctx context.Context, w io.Writer, v any) {
	if w == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.From(ctx).Warn("failed to encode JSON", "error", err)
	}
}
