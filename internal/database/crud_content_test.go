// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package database

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tomtom215/mediarec/internal/models"
)

func TestContentCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created := mustCreateContent(t, db, models.ContentBook, "Dune", 8.9, 1965, "science fiction", "space")
	if created.ID == 0 || created.Type != models.ContentBook {
		t.Fatalf("created = %+v", created)
	}
	if created.Creator != "Someone" {
		t.Errorf("Creator = %q, want Someone", created.Creator)
	}
	if len(created.Tags) != 2 || created.Tags[0] != "science fiction" {
		t.Errorf("Tags = %v", created.Tags)
	}

	got, err := db.GetContent(ctx, models.ContentBook, created.ID)
	if err != nil {
		t.Fatalf("GetContent() error = %v", err)
	}
	if got.Title != "Dune" || got.PopularityScore != 8.9 || got.Year != 1965 {
		t.Errorf("GetContent() = %+v", got)
	}

	before, after, err := db.UpdateContent(ctx, models.ContentBook, created.ID, &models.ContentInput{
		Title: "Dune Messiah", Author: "Frank Herbert", Year: 1969, PopularityScore: 8.0,
	})
	if err != nil {
		t.Fatalf("UpdateContent() error = %v", err)
	}
	if before.Title != "Dune" || after.Title != "Dune Messiah" || after.Creator != "Frank Herbert" {
		t.Errorf("UpdateContent() before=%q after=%q creator=%q", before.Title, after.Title, after.Creator)
	}
	if len(after.Tags) != 0 {
		t.Errorf("replace semantics should clear tags, got %v", after.Tags)
	}

	if _, err := db.DeleteContent(ctx, models.ContentBook, created.ID); err != nil {
		t.Fatalf("DeleteContent() error = %v", err)
	}
	if _, err := db.GetContent(ctx, models.ContentBook, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetContent() after delete = %v, want ErrNotFound", err)
	}
	if _, err := db.DeleteContent(ctx, models.ContentBook, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteContent() = %v, want ErrNotFound", err)
	}
}

func TestContent_UnknownType(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.GetContent(context.Background(), models.ContentType("podcast"), 1); err == nil {
		t.Fatal("GetContent(podcast) should fail")
	}
}

func TestListContent_Filters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	mustCreateContent(t, db, models.ContentMovie, "Heat", 8.3, 1995)
	mustCreateContent(t, db, models.ContentMovie, "Interstellar", 8.9, 2014)
	mustCreateContent(t, db, models.ContentMovie, "Inception", 8.8, 2010)

	year := 2014
	tests := []struct {
		name   string
		filter models.ContentFilter
		want   int
	}{
		{"all", models.ContentFilter{Limit: 10}, 3},
		{"page", models.ContentFilter{Limit: 2, Skip: 2}, 1},
		{"year", models.ContentFilter{Year: &year, Limit: 10}, 1},
		{"search title", models.ContentFilter{Search: "in", Limit: 10}, 2},
		{"search creator", models.ContentFilter{Search: "someone", Limit: 10}, 3},
		{"genre ilike", models.ContentFilter{Genre: "dram", Limit: 10}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := db.ListContent(ctx, models.ContentMovie, tt.filter)
			if err != nil {
				t.Fatalf("ListContent() error = %v", err)
			}
			if len(items) != tt.want {
				t.Errorf("len = %d, want %d", len(items), tt.want)
			}
		})
	}

	n, err := db.CountContent(ctx, models.ContentMovie, models.ContentFilter{Search: "in"})
	if err != nil || n != 2 {
		t.Errorf("CountContent() = %d, %v; want 2", n, err)
	}
}

func TestSearchContent_SplitsLimit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, ct := range models.AllContentTypes {
		for _, title := range []string{"Star One", "Star Two", "Star Three"} {
			mustCreateContent(t, db, ct, title, 5, 2000)
		}
	}

	all, err := db.SearchContent(ctx, "star", "", 6)
	if err != nil {
		t.Fatalf("SearchContent() error = %v", err)
	}
	if len(all) != 6 {
		t.Errorf("len = %d, want 6 (2 per type)", len(all))
	}
	perType := map[models.ContentType]int{}
	for _, c := range all {
		perType[c.Type]++
	}
	for _, ct := range models.AllContentTypes {
		if perType[ct] != 2 {
			t.Errorf("%s count = %d, want 2", ct, perType[ct])
		}
	}

	games, err := db.SearchContent(ctx, "two", models.ContentGame, 20)
	if err != nil {
		t.Fatalf("SearchContent(game) error = %v", err)
	}
	if len(games) != 1 || games[0].Type != models.ContentGame {
		t.Errorf("SearchContent(game) = %+v", games)
	}
}

func TestListCandidates_Windows(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	old := mustCreateContent(t, db, models.ContentGame, "Old", 5, 1990)
	mustCreateContent(t, db, models.ContentGame, "New", 5, 2020)
	mustCreateContent(t, db, models.ContentGame, "Unpopular", 1, 2020)

	minYear := 2000
	items, err := db.ListCandidates(ctx, models.ContentGame, CandidateFilter{
		MinPopularity: 3, MaxPopularity: 7, MinYear: &minYear,
	})
	if err != nil {
		t.Fatalf("ListCandidates() error = %v", err)
	}
	if len(items) != 1 || items[0].Title != "New" {
		t.Errorf("ListCandidates() = %+v, want only New", items)
	}

	items, err = db.ListCandidates(ctx, models.ContentGame, CandidateFilter{
		MinPopularity: 0, MaxPopularity: 10, ExcludeIDs: []int64{old.ID},
	})
	if err != nil {
		t.Fatalf("ListCandidates(exclude) error = %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2 after exclusion", len(items))
	}
}

func TestApplyRating(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	c := mustCreateContent(t, db, models.ContentBook, "Rated", 8.0, 2000)
	got, err := db.ApplyRating(ctx, models.ContentBook, c.ID, 10)
	if err != nil {
		t.Fatalf("ApplyRating() error = %v", err)
	}
	if got != 8.2 {
		t.Errorf("ApplyRating() = %v, want 8.2", got)
	}
	stored, _ := db.GetContent(ctx, models.ContentBook, c.ID)
	if stored.PopularityScore != 8.2 {
		t.Errorf("stored popularity = %v, want 8.2", stored.PopularityScore)
	}

	if _, err := db.ApplyRating(ctx, models.ContentBook, 9999, 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("ApplyRating(missing) = %v, want ErrNotFound", err)
	}
}

func TestApplyRating_ConcurrentNoLostUpdates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	db.maxCASRetries = 50

	c := mustCreateContent(t, db, models.ContentMovie, "Busy", 0, 2000)

	const workers = 4
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := db.ApplyRating(ctx, models.ContentMovie, c.ID, 10); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent ApplyRating() error = %v", err)
	}

	want := 0.0
	for i := 0; i < workers; i++ {
		want = models.BlendPopularity(want, 10)
	}
	stored, _ := db.GetContent(ctx, models.ContentMovie, c.ID)
	if stored.PopularityScore != want {
		t.Errorf("popularity = %v, want %v after %d serialized blends", stored.PopularityScore, want, workers)
	}
}
