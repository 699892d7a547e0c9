package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/commercekit/shopchat/config"
	"github.com/commercekit/shopchat/internal/store"
	"github.com/commercekit/shopchat/models"
)

func seedCMD() *cobra.Command {
	var cfgPath string
	var file string
	var cmd = &cobra.Command{
		Use:   "seed",
		Short: "Load knowledge entries from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file required")
			}
			cfg := config.LoadConfig(cfgPath)

			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var entries []models.KnowledgeEntry
			if err := json.Unmarshal(data, &entries); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			ctx := context.Background()
			st, err := store.NewWithDSN(ctx, cfg.Storage.Postgres.DSN())
			if err != nil {
				return err
			}

			known := make(map[string]bool, len(cfg.Knowledge.Categories))
			for _, c := range cfg.Knowledge.Categories {
				known[c] = true
			}
			for _, e := range entries {
				if !known[e.Category] {
					return fmt.Errorf("entry %q has unknown category %q", e.Name, e.Category)
				}
				if _, err := st.UpsertEntry(ctx, e); err != nil {
					return err
				}
			}
			log.Printf("seeded %d knowledge entries from %s", len(entries), file)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with knowledge entries")

	return cmd
}
