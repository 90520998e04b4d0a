// Package main is the entry point for reprise.
package main

import (
	"github.com/reprise-cli/reprise/cmd"
	"github.com/reprise-cli/reprise/config"
	"github.com/reprise-cli/reprise/internal/cache"
	"github.com/reprise-cli/reprise/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go cache.CollectGarbage()

	cmd.Execute()
}
