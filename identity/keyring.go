package identity

import (
	"errors"

	"github.com/kinoplay/kinoplay/constant"
	"github.com/zalando/go-keyring"
)

const keyringUser = "client-id"

// KeyringStore keeps the identifier in the system keyring.
type KeyringStore struct{}

// NewKeyringStore returns the keyring store.
func NewKeyringStore() KeyringStore {
	return KeyringStore{}
}

func (KeyringStore) Name() string { return StoreKeyring }

func (KeyringStore) Load() (string, error) {
	id, err := keyring.Get(constant.Kinoplay, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoIdentifier
	}
	return id, err
}

func (KeyringStore) Save(id string) error {
	if err := Validate(id); err != nil {
		return err
	}
	return keyring.Set(constant.Kinoplay, keyringUser, id)
}

// Forget removes the entry. Forgetting a missing entry is not an error.
func (KeyringStore) Forget() error {
	err := keyring.Delete(constant.Kinoplay, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
