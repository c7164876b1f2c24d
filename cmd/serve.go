package cmd

import (
	"fmt"
	"log"

	"github.com/martijnhiemstra/selfsuffient/internal/config"
	"github.com/martijnhiemstra/selfsuffient/internal/database"
	"github.com/martijnhiemstra/selfsuffient/internal/router"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		db, err := database.Init(cfg.Database)
		if err != nil {
			return err
		}
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		if err := database.EnsureAdmin(db, cfg); err != nil {
			return err
		}

		r := router.New(db, cfg)
		addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
		log.Printf("listening on %s", addr)
		return r.Run(addr)
	},
}
