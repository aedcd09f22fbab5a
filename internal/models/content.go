// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

/*
content.go - Catalog Models

A single Content type covers books, movies and games. The three catalog
tables differ only in the name of their creator column (author, director,
developer); ContentType carries that mapping so the database layer and
the JSON encoder can stay generic.
*/

package models

import (
	"math"
	"time"

	"github.com/goccy/go-json"
)

// ContentType identifies a catalog table.
type ContentType string

const (
	ContentBook  ContentType = "book"
	ContentMovie ContentType = "movie"
	ContentGame  ContentType = "game"
)

// AllContentTypes lists the catalog types in their canonical order.
var AllContentTypes = []ContentType{ContentBook, ContentMovie, ContentGame}

// ParseContentType accepts the singular type name ("book") or the plural
// route kind ("books").
func ParseContentType(s string) (ContentType, bool) {
	switch s {
	case "book", "books":
		return ContentBook, true
	case "movie", "movies":
		return ContentMovie, true
	case "game", "games":
		return ContentGame, true
	}
	return "", false
}

// Valid reports whether ct is one of the known catalog types.
func (ct ContentType) Valid() bool {
	switch ct {
	case ContentBook, ContentMovie, ContentGame:
		return true
	}
	return false
}

// Table is the catalog table backing this type.
func (ct ContentType) Table() string {
	return string(ct) + "s"
}

// Kind is the plural route segment, e.g. /content/books.
func (ct ContentType) Kind() string {
	return ct.Table()
}

// CreatorColumn is the table-specific creator column.
func (ct ContentType) CreatorColumn() string {
	switch ct {
	case ContentBook:
		return "author"
	case ContentMovie:
		return "director"
	case ContentGame:
		return "developer"
	}
	return "creator"
}

// Verb describes consuming this type ("reading", "watching", "playing").
func (ct ContentType) Verb() string {
	switch ct {
	case ContentBook:
		return "reading"
	case ContentMovie:
		return "watching"
	case ContentGame:
		return "playing"
	}
	return "consuming"
}

// Content is one catalog item.
type Content struct {
	ID              int64       `json:"id"`
	Type            ContentType `json:"content_type"`
	Title           string      `json:"title"`
	Creator         string      `json:"creator"`
	Genre           string      `json:"genre"`
	Year            int         `json:"year"`
	PopularityScore float64     `json:"popularity_score"`
	Description     string      `json:"description"`
	Tags            []string    `json:"tags"`
	CreatedAt       time.Time   `json:"created_at"`
}

// MarshalJSON adds the type-specific creator key next to "creator".
func (c Content) MarshalJSON() ([]byte, error) {
	out := struct {
		ID              int64       `json:"id"`
		Type            ContentType `json:"content_type"`
		Title           string      `json:"title"`
		Creator         string      `json:"creator"`
		Author          string      `json:"author,omitempty"`
		Director        string      `json:"director,omitempty"`
		Developer       string      `json:"developer,omitempty"`
		Genre           string      `json:"genre"`
		Year            int         `json:"year"`
		PopularityScore float64     `json:"popularity_score"`
		Description     string      `json:"description"`
		Tags            []string    `json:"tags"`
		CreatedAt       time.Time   `json:"created_at"`
	}{
		ID:              c.ID,
		Type:            c.Type,
		Title:           c.Title,
		Creator:         c.Creator,
		Genre:           c.Genre,
		Year:            c.Year,
		PopularityScore: c.PopularityScore,
		Description:     c.Description,
		Tags:            c.Tags,
		CreatedAt:       c.CreatedAt,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}

	switch c.Type {
	case ContentBook:
		out.Author = c.Creator
	case ContentMovie:
		out.Director = c.Creator
	case ContentGame:
		out.Developer = c.Creator
	}
	return json.Marshal(out)
}

// Summary projects the fields the simulation tracker needs.
func (c *Content) Summary() *ContentSummary {
	return &ContentSummary{
		ID:              c.ID,
		Type:            c.Type,
		Title:           c.Title,
		Tags:            c.Tags,
		PopularityScore: c.PopularityScore,
		Year:            c.Year,
	}
}

// ContentSummary is the catalog lookup result used by the tracker.
type ContentSummary struct {
	ID              int64
	Type            ContentType
	Title           string
	Tags            []string
	PopularityScore float64
	Year            int
}

// ContentInput is the create/replace body for admin content routes. The
// creator may arrive under the generic or the type-specific key.
type ContentInput struct {
	Title           string   `json:"title" validate:"required,min=1,max=300"`
	Creator         string   `json:"creator" validate:"omitempty,max=200"`
	Author          string   `json:"author,omitempty" validate:"omitempty,max=200"`
	Director        string   `json:"director,omitempty" validate:"omitempty,max=200"`
	Developer       string   `json:"developer,omitempty" validate:"omitempty,max=200"`
	Genre           string   `json:"genre" validate:"omitempty,max=100"`
	Year            int      `json:"year" validate:"omitempty,min=0,max=3000"`
	PopularityScore float64  `json:"popularity_score" validate:"min=0,max=10"`
	Description     string   `json:"description" validate:"omitempty,max=5000"`
	Tags            []string `json:"tags" validate:"omitempty,max=50,dive,min=1,max=50"`
}

// ResolvedCreator returns whichever creator key was supplied.
func (in *ContentInput) ResolvedCreator() string {
	for _, s := range []string{in.Creator, in.Author, in.Director, in.Developer} {
		if s != "" {
			return s
		}
	}
	return ""
}

// ContentFilter narrows a catalog listing.
type ContentFilter struct {
	Genre  string
	Year   *int
	Search string
	Skip   int
	Limit  int
}

// Popularity bounds.
const (
	MinPopularity = 0.0
	MaxPopularity = 10.0
)

// BlendPopularity folds a new rating into a popularity score with weight
// 0.1, rounds to two decimals and clamps to [0,10].
func BlendPopularity(old float64, rating int) float64 {
	v := old*0.9 + float64(rating)*0.1
	v = math.Round(v*100) / 100
	return math.Max(MinPopularity, math.Min(MaxPopularity, v))
}
