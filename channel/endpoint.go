package channel

import (
	"net/url"
	"strings"

	"github.com/kinoplay/kinoplay/constant"
)

// WebSocketEndpoint builds the control channel URL for a client,
// ws[s]://<host><path>?pid=<id>.
func WebSocketEndpoint(host, path string, secure bool, id string) string {
	scheme := "ws"
	if secure {
		scheme = "wss"
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     host,
		Path:     path,
		RawQuery: url.Values{constant.ClientIDParam: {id}}.Encode(),
	}
	return u.String()
}

// RedisEndpoint names the pub/sub channel a client listens on.
func RedisEndpoint(prefix, id string) string {
	return prefix + id
}
