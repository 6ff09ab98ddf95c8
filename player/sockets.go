package player

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kinoplay/kinoplay/log"
	"github.com/kinoplay/kinoplay/where"
)

// staleSocketAge keeps sockets of an mpv that is still starting up.
const staleSocketAge = time.Minute

// CollectStaleSockets removes IPC sockets left behind by mpv instances that
// are gone. Sockets something still listens on are kept.
func CollectStaleSockets() {
	removed := collectStaleSockets(where.Temp(), staleSocketAge)
	if removed > 0 {
		log.Infof("removed %d stale mpv sockets", removed)
	}
}

func collectStaleSockets(dir string, maxAge time.Duration) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	var removed int
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "mpv-") || !strings.HasSuffix(name, ".sock") {
			continue
		}

		info, err := entry.Info()
		if err != nil || time.Since(info.ModTime()) < maxAge {
			continue
		}

		path := filepath.Join(dir, name)
		if conn, err := net.DialTimeout("unix", path, socketWaitDelay); err == nil {
			_ = conn.Close()
			continue
		}

		if err := os.Remove(path); err == nil {
			removed++
		}
	}
	return removed
}
