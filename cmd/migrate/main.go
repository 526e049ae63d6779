package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	migrate "github.com/medaverse/meda-api/db"
	"github.com/medaverse/meda-api/service/persist/postgres"
)

func init() {
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "")
	viper.SetDefault("POSTGRES_DB", "postgres")
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.AutomaticEnv()
}

func main() {
	client := postgres.MustCreateClient()

	if _, err := migrate.RunMigration(client, "./db/migrations/core"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("migrations applied")
}
