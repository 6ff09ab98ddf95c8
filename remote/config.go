package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kinoplay/kinoplay/channel"
	"github.com/kinoplay/kinoplay/config"
	"github.com/kinoplay/kinoplay/constant"
	"github.com/kinoplay/kinoplay/identity"
	"github.com/kinoplay/kinoplay/key"
	"github.com/kinoplay/kinoplay/landing"
	"github.com/kinoplay/kinoplay/log"
	"github.com/kinoplay/kinoplay/player"
	"github.com/spf13/viper"
)

// ErrUnknownTransport is returned for an unsupported channel.transport.
var ErrUnknownTransport = errors.New("unknown transport")

// discoverTimeout bounds the mDNS lookup of the server.
const discoverTimeout = 5 * time.Second

// FromConfig builds controller options from the active configuration.
// The client identifier is resolved here, once.
func FromConfig(ctx context.Context) (Options, error) {
	id, err := identity.Resolve()
	if err != nil {
		return Options{}, err
	}
	if err := identity.Validate(id); err != nil {
		return Options{}, err
	}

	policy, err := landing.ParsePolicy(viper.GetString(key.LandingFullscreenPolicy))
	if err != nil {
		return Options{}, err
	}

	transport, endpoint, err := Transport(ctx, viper.GetString(key.ChannelTransport), id)
	if err != nil {
		return Options{}, err
	}

	p, err := player.New(viper.GetString(key.Player))
	if err != nil {
		return Options{}, err
	}

	return Options{
		ClientID:     id,
		Player:       p,
		Transport:    transport,
		Endpoint:     endpoint,
		Delay:        config.ReconnectDelay(),
		Batching:     viper.GetBool(key.ChannelBatching),
		RevealOnPlay: viper.GetBool(key.PlayerRevealOnPlay),
		Landing:      viper.GetBool(key.LandingEnable),
		Policy:       policy,
	}, nil
}

// Transport returns the configured transport and the endpoint it dials for id.
func Transport(ctx context.Context, name, id string) (channel.Transport, string, error) {
	switch name {
	case channel.TransportWebSocket:
		host, err := ServerHost(ctx)
		if err != nil {
			return nil, "", err
		}

		ws, err := channel.NewWebSocket(id)
		if err != nil {
			return nil, "", err
		}

		endpoint := channel.WebSocketEndpoint(
			host,
			viper.GetString(key.ServerPath),
			viper.GetBool(key.ServerSecure),
			id,
		)
		return ws, endpoint, nil
	case channel.TransportRedis:
		endpoint := channel.RedisEndpoint(viper.GetString(key.RedisPrefix), id)
		return channel.NewRedis(viper.GetString(key.RedisAddr)), endpoint, nil
	default:
		return nil, "", fmt.Errorf("%w: %q, available: %v", ErrUnknownTransport, name, channel.Transports())
	}
}

// ServerHost returns server.host, or the host found over mDNS when
// server.discover is set.
func ServerHost(ctx context.Context) (string, error) {
	if !viper.GetBool(key.ServerDiscover) {
		return viper.GetString(key.ServerHost), nil
	}

	ctx, cancel := context.WithTimeout(ctx, discoverTimeout)
	defer cancel()

	host, err := channel.Discover(ctx, constant.DiscoveryService)
	if err != nil {
		return "", err
	}

	log.Infof("using discovered server %s", host)
	return host, nil
}
