package config

import (
	"github.com/kinoplay/kinoplay/constant"
	"github.com/kinoplay/kinoplay/key"
)

// Default holds every registered field by key.
var Default = make(map[string]Field)

// EnvExposed lists the keys bound to environment variables.
var EnvExposed []string

func register(k string, v any, desc string, options ...string) {
	if _, exists := Default[k]; exists {
		panic("duplicate config key: " + k)
	}
	Default[k] = Field{Key: k, Value: v, Description: desc, Options: options}
	EnvExposed = append(EnvExposed, k)
}

func init() {
	register(key.ServerHost, "localhost:8090", "Host (and port) of the kinohub server")
	register(key.ServerPath, constant.ControlPath, "Path of the control channel endpoint")
	register(key.ServerSecure, false, "Use the secure transport variant (wss)")
	register(key.ServerDiscover, false, "Resolve the server via mDNS instead of server.host")

	register(key.ClientID, "", "Client identifier override.\nLeave empty to read it from the client store")
	register(key.ClientStore, "file", "Where the client identifier is stored", "file", "keyring")

	register(key.ChannelTransport, "websocket", "Control channel transport", "websocket", "redis")
	register(key.ChannelBatching, true, "Treat newline separated records in one frame as separate commands")
	register(key.ChannelReconnectDelay, 5, "Seconds to wait before reconnecting a closed control channel")

	register(key.RedisAddr, "localhost:6379", "Redis address used by the redis transport")
	register(key.RedisPrefix, "pws:", "Redis channel prefix, the client identifier is appended")

	register(key.Player, "mpv", "Media player backend", "mpv", "mpris", "memory")
	register(key.PlayerMPRISDest, "", "MPRIS bus name to control.\nThe first player found is used when empty")
	register(key.PlayerMPVSocket, "", "Attach to an mpv already listening on this IPC socket.\nA new idle mpv is launched when empty")
	register(key.PlayerRevealOnPlay, false, "Reveal the player surface when a play command arrives")

	register(key.LandingEnable, true, "Show the landing overlay when attached to a terminal")
	register(key.LandingFullscreenPolicy, "ignore", "How the landing overlay reacts to fullscreen changes", "ignore", "follow")

	register(key.IconsVariant, "plain", "Icons variant (nerd requires a nerd font)", "emoji", "kaomoji", "plain", "squares", "nerd")

	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Log level, from least to most verbose", "panic", "fatal", "error", "warn", "info", "debug", "trace")
	register(key.LogsJson, false, "Use json format for logs")

	register(key.CliColored, true, "Enable colored CLI output")
}
