package log

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kinoplay/kinoplay/filesystem"
	"github.com/kinoplay/kinoplay/key"
	"github.com/kinoplay/kinoplay/where"
	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Given logs.write", t, func() {
		defer func() {
			viper.Set(key.LogsWrite, false)
			enabled = false
		}()

		Convey("When disabled nothing should be written", func() {
			viper.Set(key.LogsWrite, false)
			So(Setup(), ShouldBeNil)
			So(entry(), ShouldEqual, discard)
		})

		Convey("When enabled entries should land in today's file", func() {
			viper.Set(key.LogsWrite, true)
			viper.Set(key.LogsLevel, "info")
			So(Setup(), ShouldBeNil)

			WithFields(logrus.Fields{"generation": 3}).Info("channel open")
			Debugf("hidden at info level")

			path := filepath.Join(where.Logs(), time.Now().Format("2006-01-02")+".log")
			data, err := filesystem.API().ReadFile(path)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, "channel open")
			So(string(data), ShouldContainSubstring, "generation=3")
			So(string(data), ShouldNotContainSubstring, "hidden")
		})
	})
}
