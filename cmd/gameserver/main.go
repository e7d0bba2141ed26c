// Command gameserver loads the world content and runs the combat scheduler
// until terminated.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sundered/mud/internal/config"
	"github.com/sundered/mud/internal/game/dice"
	"github.com/sundered/mud/internal/game/item"
	"github.com/sundered/mud/internal/game/npc"
	"github.com/sundered/mud/internal/game/world"
	"github.com/sundered/mud/internal/gameserver"
	"github.com/sundered/mud/internal/observability"
	"github.com/sundered/mud/internal/scripting"
	"github.com/sundered/mud/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "gameserver:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := pflag.String("config", "configs/dev.yaml", "path to the server config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck // stdout sync failures are unactionable

	log.Info("starting", zap.String("server", cfg.Server.Name))

	worlds := world.NewManager(log)
	zones, err := world.LoadZones(cfg.World.ZonesDir)
	if err != nil {
		return err
	}
	for _, zone := range zones {
		if err := worlds.AddZone(zone); err != nil {
			return err
		}
	}

	catalog := item.NewCatalog(log)
	if err := catalog.LoadDir(cfg.World.ItemsDir); err != nil {
		return err
	}

	bestiary := npc.NewBestiary(catalog, log)
	if err := bestiary.LoadDir(cfg.World.NPCsDir); err != nil {
		return err
	}

	rolls := dice.NewCryptoSource()
	engine := scripting.NewEngine(cfg.Scripting, rolls, log)
	handler := gameserver.NewTwitchHandler(cfg.Combat, worlds, catalog, engine, rolls, log)

	lc := server.NewLifecycle(log)
	lc.Add(server.NewComponent("combat",
		nil,
		func(ctx context.Context) error {
			handler.Registry().StopAll()
			return nil
		}))

	return lc.Run(context.Background())
}
