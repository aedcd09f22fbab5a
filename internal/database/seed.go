// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/mediarec/internal/logging"
	"github.com/tomtom215/mediarec/internal/models"
)

// PasswordHasher turns a plaintext password into a stored hash.
type PasswordHasher func(password string) (string, error)

// SeedResult counts what Seed inserted.
type SeedResult struct {
	Users   int `json:"users"`
	Content int `json:"content"`
}

type seedUser struct {
	username, email, password string
	roleID                    int64
	prefs                     models.Preferences
}

var seedUsers = []seedUser{
	{"admin", "admin@mediarec.local", "admin123", models.RoleAdminID, models.Preferences{Popularity: 50, Newness: 50}},
	{"testuser", "test@example.com", "test123", models.RoleUserID, models.Preferences{Popularity: 70, Newness: 30}},
}

var seedContent = map[models.ContentType][]models.ContentInput{
	models.ContentBook: {
		{Title: "War and Peace", Creator: "Leo Tolstoy", Genre: "Classic literature", Year: 1869, PopularityScore: 9.2,
			Description: "An epic novel of Russian society during the Napoleonic wars",
			Tags:        []string{"classic", "history", "drama", "philosophy", "russian literature"}},
		{Title: "1984", Creator: "George Orwell", Genre: "Dystopia", Year: 1949, PopularityScore: 8.8,
			Description: "A cautionary novel about a totalitarian society",
			Tags:        []string{"dystopia", "politics", "philosophy", "control", "freedom"}},
		{Title: "Harry Potter and the Philosopher's Stone", Creator: "J.K. Rowling", Genre: "Fantasy", Year: 1997, PopularityScore: 9.5,
			Description: "The first book about the young wizard",
			Tags:        []string{"fantasy", "magic", "adventure", "friendship", "school"}},
		{Title: "Dune", Creator: "Frank Herbert", Genre: "Science fiction", Year: 1965, PopularityScore: 8.9,
			Description: "An epic saga of the far future",
			Tags:        []string{"science fiction", "space", "politics", "ecology", "epic"}},
		{Title: "The Master and Margarita", Creator: "Mikhail Bulgakov", Genre: "Mysticism", Year: 1967, PopularityScore: 9.1,
			Description: "A novel of good and evil, love and betrayal",
			Tags:        []string{"mysticism", "philosophy", "satire", "love", "russian literature"}},
	},
	models.ContentMovie: {
		{Title: "The Matrix", Creator: "The Wachowskis", Genre: "Science fiction", Year: 1999, PopularityScore: 9.0,
			Description: "A programmer discovers that reality is a simulation",
			Tags:        []string{"science fiction", "action", "philosophy", "cyberpunk", "reality"}},
		{Title: "The Shawshank Redemption", Creator: "Frank Darabont", Genre: "Drama", Year: 1994, PopularityScore: 9.3,
			Description: "A story of hope and friendship in prison",
			Tags:        []string{"drama", "hope", "friendship", "prison", "classic"}},
		{Title: "The Lord of the Rings: The Fellowship of the Ring", Creator: "Peter Jackson", Genre: "Fantasy", Year: 2001, PopularityScore: 9.1,
			Description: "A hobbit's epic journey",
			Tags:        []string{"fantasy", "adventure", "epic", "magic", "friendship"}},
		{Title: "Pulp Fiction", Creator: "Quentin Tarantino", Genre: "Crime", Year: 1994, PopularityScore: 8.7,
			Description: "Interwoven stories of the criminal underworld",
			Tags:        []string{"crime", "noir", "dialogue", "violence", "cult"}},
		{Title: "Interstellar", Creator: "Christopher Nolan", Genre: "Science fiction", Year: 2014, PopularityScore: 8.9,
			Description: "A journey through space and time",
			Tags:        []string{"science fiction", "space", "time", "family", "science"}},
	},
	models.ContentGame: {
		{Title: "The Witcher 3: Wild Hunt", Creator: "CD Projekt RED", Genre: "RPG", Year: 2015, PopularityScore: 9.4,
			Description: "An epic fantasy RPG about the witcher Geralt",
			Tags:        []string{"RPG", "fantasy", "open world", "quests", "choice"}},
		{Title: "Portal 2", Creator: "Valve", Genre: "Puzzle", Year: 2011, PopularityScore: 9.2,
			Description: "An inventive puzzle game built around portals",
			Tags:        []string{"puzzle", "science fiction", "humor", "physics", "co-op"}},
		{Title: "Minecraft", Creator: "Mojang", Genre: "Sandbox", Year: 2011, PopularityScore: 9.0,
			Description: "Building and survival in a world of blocks",
			Tags:        []string{"sandbox", "building", "survival", "creativity", "multiplayer"}},
		{Title: "Half-Life 2", Creator: "Valve", Genre: "Shooter", Year: 2004, PopularityScore: 9.1,
			Description: "A landmark first-person shooter",
			Tags:        []string{"shooter", "science fiction", "physics", "story", "classic"}},
		{Title: "Civilization VI", Creator: "Firaxis Games", Genre: "Strategy", Year: 2016, PopularityScore: 8.5,
			Description: "Turn-based strategy about growing a civilization",
			Tags:        []string{"strategy", "turn-based", "history", "diplomacy", "development"}},
	},
}

// Seed inserts the demo accounts and sample catalog. Rows that already
// exist (same username, or same title within a type) are skipped, so Seed
// is safe to run repeatedly.
func (db *DB) Seed(ctx context.Context, hash PasswordHasher) (*SeedResult, error) {
	res := &SeedResult{}

	if err := db.ensureRoles(ctx); err != nil {
		return nil, err
	}

	for _, su := range seedUsers {
		_, err := db.GetUserByUsername(ctx, su.username)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return res, err
		}
		pw, err := hash(su.password)
		if err != nil {
			return res, fmt.Errorf("failed to hash seed password for %s: %w", su.username, err)
		}
		if _, err := db.CreateUser(ctx, &models.User{
			Username:     su.username,
			Email:        su.email,
			PasswordHash: pw,
			RoleID:       su.roleID,
			Preferences:  su.prefs,
		}); err != nil {
			return res, fmt.Errorf("failed to seed user %s: %w", su.username, err)
		}
		res.Users++
	}

	now := time.Now().UTC()
	for _, ct := range models.AllContentTypes {
		for i := range seedContent[ct] {
			in := seedContent[ct][i]
			exists, err := db.titleExists(ctx, ct, in.Title)
			if err != nil {
				return res, err
			}
			if exists {
				continue
			}
			if _, err := db.insertContent(ctx, ct, &in, now); err != nil {
				return res, fmt.Errorf("failed to seed %s %q: %w", ct, in.Title, err)
			}
			res.Content++
		}
	}

	logging.Info().Int("users", res.Users).Int("content", res.Content).Msg("Seed data applied")
	return res, nil
}

// IsEmpty reports whether no accounts exist yet.
func (db *DB) IsEmpty(ctx context.Context) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	return n == 0, nil
}

func (db *DB) titleExists(ctx context.Context, ct models.ContentType, title string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var one int
	err := db.conn.QueryRowContext(ctx, "SELECT 1 FROM "+ct.Table()+" WHERE title = ? LIMIT 1", title).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check %s title: %w", ct, err)
	}
	return true, nil
}
