// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package main

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomtom215/mediarec/internal/database"
	"github.com/tomtom215/mediarec/internal/models"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List and moderate accounts",
	}
	cmd.AddCommand(
		newUsersListCmd(),
		newUsersActiveCmd("block", "Deactivate an account", false),
		newUsersActiveCmd("unblock", "Reactivate an account", true),
	)
	return cmd
}

type userList struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
}

func newUsersListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			skip, _ := cmd.Flags().GetInt("skip")
			limit, _ := cmd.Flags().GetInt("limit")
			if skip < 0 || limit < 1 {
				return errors.New("--skip must be >= 0 and --limit >= 1")
			}

			db, err := openDatabase(cmd)
			if err != nil {
				return err
			}
			defer closeDatabase(cmd, db)

			users, total, err := db.ListUsers(cmd.Context(), skip, limit)
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}

			if jsonOutput(cmd) {
				if users == nil {
					users = []models.User{}
				}
				return writeJSON(cmd, userList{Users: users, Total: total})
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tROLE\tACTIVE")
			for _, u := range users {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\n", u.ID, u.Username, u.Email, u.RoleName, u.IsActive)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d of %d users\n", len(users), total)
			return err
		},
	}
	cmd.Flags().Int("skip", 0, "Number of accounts to skip")
	cmd.Flags().Int("limit", 100, "Maximum accounts to list")
	return cmd
}

type activeChange struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Previous bool   `json:"previous_is_active"`
	IsActive bool   `json:"is_active"`
}

func newUsersActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id < 1 {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			db, err := openDatabase(cmd)
			if err != nil {
				return err
			}
			defer closeDatabase(cmd, db)

			user, err := db.GetUserByID(cmd.Context(), id)
			if errors.Is(err, database.ErrNotFound) {
				return fmt.Errorf("user %d not found", id)
			}
			if err != nil {
				return fmt.Errorf("load user: %w", err)
			}
			previous, err := db.SetUserActive(cmd.Context(), id, active)
			if err != nil {
				return fmt.Errorf("%s user: %w", use, err)
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd, activeChange{UserID: id, Username: user.Username, Previous: previous, IsActive: active})
			}
			verb := "unblocked"
			if !active {
				verb = "blocked"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "User %s has been %s\n", user.Username, verb)
			return err
		},
	}
}
