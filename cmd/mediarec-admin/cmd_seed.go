// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/mediarec/internal/auth"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo accounts and sample catalog",
		Long: `Creates the admin and user roles, the admin/admin123 and
testuser/test123 accounts, and five books, movies and games.

Existing accounts and titles are left untouched, so seed can be run
repeatedly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cost, _ := cmd.Flags().GetInt("bcrypt-cost")
			if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
				return fmt.Errorf("--bcrypt-cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
			}

			db, err := openDatabase(cmd)
			if err != nil {
				return err
			}
			defer closeDatabase(cmd, db)

			res, err := db.Seed(cmd.Context(), auth.Hasher(cost))
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd, res)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users and %d content items\n", res.Users, res.Content)
			return err
		},
	}
	cmd.Flags().Int("bcrypt-cost", bcrypt.DefaultCost, "bcrypt cost for seeded passwords")
	return cmd
}
