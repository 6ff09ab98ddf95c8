// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Server Endpoint - these keys locate the kinohub control channel.
const (
	ServerHost     = "server.host"
	ServerPath     = "server.path"
	ServerSecure   = "server.secure"
	ServerDiscover = "server.discover"
)

// Client Identity - these keys govern how the per-client identifier is resolved.
const (
	ClientID    = "client.id"
	ClientStore = "client.store"
)

// Control Channel - these keys shape the connection manager and frame decoding.
const (
	ChannelTransport      = "channel.transport"
	ChannelBatching       = "channel.batching"
	ChannelReconnectDelay = "channel.reconnect_delay"
)

// Redis Transport - these keys configure the pub/sub variant of the control channel.
const (
	RedisAddr   = "redis.addr"
	RedisPrefix = "redis.prefix"
)

// Media Playback - these keys select and tune the local player backend.
const (
	Player             = "player.default"
	PlayerMPRISDest    = "player.mpris_dest"
	PlayerMPVSocket    = "player.mpv_socket"
	PlayerRevealOnPlay = "player.reveal_on_play"
)

// Landing Overlay - these keys configure the terminal presentation layer.
const (
	LandingEnable           = "landing.enable"
	LandingFullscreenPolicy = "landing.fullscreen_policy"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-interactive application behavior.
const (
	CliColored = "cli.colored"
)
