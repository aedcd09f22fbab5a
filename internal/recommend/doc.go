// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

// Package recommend ranks catalog items for a user with a tag heuristic.
//
// # Scoring
//
// The tag profile is built from the user's five most recent rated
// interactions. Every item rated 7 or higher contributes its tags with
// weight (rating-6)*0.5, and the ten heaviest tags are kept.
//
// Candidates are unrated items whose popularity lies within two points of
// the user's popularity preference (0-100 mapped onto 0-10). A newness
// preference above 70 keeps items from the last ten years; below 30 keeps
// items at least twenty years old.
//
// Each candidate scores |tags ∩ profile| / |profile| plus up to 0.1 of
// jitter, or a plain random draw when the profile is empty. Every content
// type contributes its best limit/len(types) items and the merged list is
// shuffled.
//
// # Caching
//
// Results are cached per user and request. The eventbus invalidates a
// user's entries when one of their sessions completes:
//
//	engine, err := recommend.NewEngine(db, recommend.ConfigFrom(&cfg.Recommend), logger)
//	handler := eventbus.InvalidateRecommendations(engine.Cache())
//
// # Other queries
//
// Similar ranks items of one type by tag Jaccard similarity with a source
// item. Trending ranks items by how many sessions started within a window.
// Feedback stores a helpful/unhelpful vote.
package recommend
