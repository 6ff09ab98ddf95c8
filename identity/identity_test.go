package identity

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kinoplay/kinoplay/filesystem"
	"github.com/kinoplay/kinoplay/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

func init() {
	filesystem.SetMemMapFs()
	keyring.MockInit()
}

func TestFileStore(t *testing.T) {
	Convey("Given an empty file store", t, func() {
		filesystem.SetMemMapFs()
		store := NewFileStore("/state/client.json")

		Convey("Load should report no identifier", func() {
			_, err := store.Load()
			So(errors.Is(err, ErrNoIdentifier), ShouldBeTrue)
		})

		Convey("A saved identifier should load back", func() {
			So(store.Save("3f1c2a"), ShouldBeNil)

			id, err := NewFileStore("/state/client.json").Load()
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "3f1c2a")

			Convey("And be gone once forgotten", func() {
				So(store.Forget(), ShouldBeNil)
				_, err := store.Load()
				So(errors.Is(err, ErrNoIdentifier), ShouldBeTrue)
			})
		})

		Convey("Invalid identifiers should be refused", func() {
			So(store.Save(""), ShouldNotBeNil)
			So(store.Save("a;b"), ShouldNotBeNil)
		})
	})
}

func TestKeyringStore(t *testing.T) {
	Convey("Given the keyring store", t, func() {
		store := NewKeyringStore()
		So(store.Forget(), ShouldBeNil)

		Convey("Load should report no identifier", func() {
			_, err := store.Load()
			So(errors.Is(err, ErrNoIdentifier), ShouldBeTrue)
		})

		Convey("A saved identifier should load back", func() {
			So(store.Save("tv-livingroom"), ShouldBeNil)
			id, err := store.Load()
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "tv-livingroom")
		})

		Convey("Forgetting twice should succeed", func() {
			So(store.Forget(), ShouldBeNil)
			So(store.Forget(), ShouldBeNil)
		})
	})
}

func TestResolve(t *testing.T) {
	Convey("Resolve", t, func() {
		filesystem.SetMemMapFs()
		viper.Set(key.ClientID, "")
		viper.Set(key.ClientStore, StoreKeyring)
		So(NewKeyringStore().Forget(), ShouldBeNil)

		Convey("Should prefer the configured override", func() {
			So(NewKeyringStore().Save("stored"), ShouldBeNil)
			viper.Set(key.ClientID, "  flag ")

			id, err := Resolve()
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "flag")
		})

		Convey("Should fall back to the configured store", func() {
			So(NewKeyringStore().Save("stored"), ShouldBeNil)

			id, err := Resolve()
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "stored")
		})

		Convey("Should report a missing identifier", func() {
			_, err := Resolve()
			So(errors.Is(err, ErrNoIdentifier), ShouldBeTrue)
		})

		Convey("Should reject unknown stores", func() {
			viper.Set(key.ClientStore, "cookie-jar")
			_, err := Resolve()
			So(errors.Is(err, ErrUnknownStore), ShouldBeTrue)
		})

		Convey("Should read from the state file", func() {
			viper.Set(key.ClientStore, StoreFile)
			store, err := Configured()
			So(err, ShouldBeNil)
			So(store.Save("from-file"), ShouldBeNil)

			id, err := Resolve()
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "from-file")
		})
	})
}

func TestGenerate(t *testing.T) {
	Convey("Generated identifiers should be unique valid uuids", t, func() {
		a, b := Generate(), Generate()
		So(a, ShouldNotEqual, b)
		So(Validate(a), ShouldBeNil)

		_, err := uuid.Parse(a)
		So(err, ShouldBeNil)
	})
}
