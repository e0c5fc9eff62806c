package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/kaptain9960/payflow/database"
)

// migrateCommands ensures the schema exists without starting the server.
// Connecting creates any missing tables.
func migrateCommands(b *payflowInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "create or verify the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			_, err := database.GetDBConnection(b.cnf)
			if err != nil {
				log.Fatalf("Error ensuring schema: %v", err)
			}
			log.Println("Database schema is up to date")
		},
	}

	return cmd
}
