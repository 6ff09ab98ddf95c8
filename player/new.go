package player

import (
	"fmt"

	"github.com/kinoplay/kinoplay/key"
	"github.com/spf13/viper"
)

// New returns the backend registered under name, configured from viper.
func New(name string) (Player, error) {
	switch name {
	case BackendMPV:
		if socket := viper.GetString(key.PlayerMPVSocket); socket != "" {
			return AttachMPV(socket), nil
		}
		return NewMPV(), nil
	case BackendMPRIS:
		return NewMPRIS(viper.GetString(key.PlayerMPRISDest))
	case BackendMemory:
		return NewMemory(0), nil
	default:
		return nil, fmt.Errorf("%w: %q, available: %v", ErrUnknownBackend, name, Backends())
	}
}
