package cmd

import (
	"log"

	"github.com/martijnhiemstra/selfsuffient/internal/config"
	"github.com/martijnhiemstra/selfsuffient/internal/database"
	"github.com/martijnhiemstra/selfsuffient/internal/service"

	"github.com/spf13/cobra"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send the daily reminder email digest",
	Long: "remind mails every opted-in user a digest of today's tasks and\n" +
		"unfinished routine steps. Run it once a day from cron.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		db, err := database.Init(cfg.Database)
		if err != nil {
			return err
		}

		email := service.NewEmailSender(cfg)
		reminders := service.NewReminderService(db, email)
		sent, err := reminders.SendDailyDigests()
		if err != nil {
			return err
		}
		log.Printf("sent %d reminder emails", sent)
		return nil
	},
}
