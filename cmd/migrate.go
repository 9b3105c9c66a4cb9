package main

import (
	"github.com/spf13/cobra"
	"github.com/thesrcielos/PadelTracker/internal/match"
	"github.com/thesrcielos/PadelTracker/internal/profile"
	"github.com/thesrcielos/PadelTracker/internal/skill"
	"github.com/thesrcielos/PadelTracker/internal/user"
	"github.com/thesrcielos/PadelTracker/pkg/db"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := db.OpenPostgres(cfg.Postgres, cfg.Environment)
		if err != nil {
			return err
		}
		if err := migrate(conn); err != nil {
			return err
		}
		log.Info("database migrated")
		return nil
	},
}

func migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&user.User{},
		&profile.Profile{},
		&match.Match{},
		&match.PerformanceBucket{},
		&skill.Skill{},
		&skill.Assessment{},
	)
}
