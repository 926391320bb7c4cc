package routing

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/mahirjain10/image-resolution-worker/internal/types"
)

const DefaultIncomingPrefix = "images/original/"

// Router decides which keys are processed and where derivatives go.
type Router struct {
	incomingPrefix string
}

func NewRouter(incomingPrefix string) *Router {
	if incomingPrefix == "" {
		incomingPrefix = DefaultIncomingPrefix
	}
	return &Router{incomingPrefix: incomingPrefix}
}

func (r *Router) IncomingPrefix() string {
	return r.incomingPrefix
}

// IsInScope expects a key already passed through DecodeKey.
func (r *Router) IsInScope(key string) bool {
	return strings.HasPrefix(key, r.incomingPrefix)
}

// DecodeKey turns a notification key into the stored object key: '+' is a
// space and percent escapes are decoded afterwards, so "%2B" survives as '+'.
func DecodeKey(raw string) (string, error) {
	key, err := url.PathUnescape(strings.ReplaceAll(raw, "+", " "))
	if err != nil {
		return "", fmt.Errorf("decode key %q: %w", raw, err)
	}
	return key, nil
}

func DestinationKey(res types.Resolution, runID string) string {
	return res.DestinationPrefix + "/" + runID + ".jpg"
}

// OriginalFileName is the last path segment of a decoded key.
func OriginalFileName(key string) string {
	return path.Base(key)
}
