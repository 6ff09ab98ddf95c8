// Package identity resolves the opaque client identifier that scopes the
// command stream kinohub delivers to this client.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kinoplay/kinoplay/key"
	"github.com/kinoplay/kinoplay/where"
	"github.com/spf13/viper"
)

// ErrNoIdentifier is returned when neither the configuration nor the store
// holds an identifier.
var ErrNoIdentifier = errors.New("no client identifier, run `kinoplay id --generate` or pass --id")

// ErrUnknownStore is returned for a client.store value that names no store.
var ErrUnknownStore = errors.New("unknown client store")

// Store persists the identifier between runs.
type Store interface {
	Name() string
	Load() (string, error)
	Save(id string) error
	Forget() error
}

// Store names accepted by StoreFor.
const (
	StoreFile    = "file"
	StoreKeyring = "keyring"
)

// Stores lists the available store names.
func Stores() []string {
	return []string{StoreFile, StoreKeyring}
}

// StoreFor returns the store registered under name.
func StoreFor(name string) (Store, error) {
	switch name {
	case StoreFile:
		return NewFileStore(where.State()), nil
	case StoreKeyring:
		return NewKeyringStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q, available: %v", ErrUnknownStore, name, Stores())
	}
}

// Configured returns the store selected by client.store.
func Configured() (Store, error) {
	return StoreFor(viper.GetString(key.ClientStore))
}

// Resolve reads the identifier once: the client.id override first, then the
// configured store.
func Resolve() (string, error) {
	if id := strings.TrimSpace(viper.GetString(key.ClientID)); id != "" {
		return id, nil
	}

	store, err := Configured()
	if err != nil {
		return "", err
	}

	id, err := store.Load()
	if err != nil {
		return "", fmt.Errorf("%s store: %w", store.Name(), err)
	}
	return id, nil
}

// Generate returns a fresh identifier in the format kinohub issues for its
// puid cookie.
func Generate() string {
	return uuid.NewString()
}

// Validate rejects identifiers that cannot be carried in a cookie or query.
func Validate(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("identifier is empty")
	}
	if strings.ContainsAny(id, " ;,\"\\\t\r\n") {
		return fmt.Errorf("identifier %q contains characters not allowed in a cookie", id)
	}
	return nil
}
