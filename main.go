// Package main is the entry point of kinoplay.
package main

import (
	"github.com/kinoplay/kinoplay/cmd"
	"github.com/kinoplay/kinoplay/config"
	"github.com/kinoplay/kinoplay/log"
	"github.com/kinoplay/kinoplay/player"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go player.CollectStaleSockets()

	cmd.Execute()
}
