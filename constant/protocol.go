package constant

// Control channel defaults shared by the server side of kinohub.
const (
	// ControlPath is the websocket path the kinohub player hub listens on.
	ControlPath = "/ui/pws/"

	// ClientIDParam is the query parameter carrying the client identifier.
	ClientIDParam = "pid"

	// ClientIDCookie is the cookie name kinohub issues the identifier under.
	ClientIDCookie = "puid"

	// DiscoveryService is the mDNS service kinohub advertises itself as.
	DiscoveryService = "_kinohub._tcp"

	// DiscoveryDomain is the mDNS browse domain.
	DiscoveryDomain = "local."
)
