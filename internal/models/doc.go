// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

/*
Package models defines the data structures shared by the Mediarec packages.

Key Components:

  - Content, ContentInput, ContentType: catalog items for books, movies and games
  - User, Role, Preferences: accounts and recommendation preferences
  - Interaction, InteractionUpdate: the consumption ledger
  - AdminAction, RecommendationFeedback: audit trail and feedback

JSON field names match the public HTTP API.
*/
package models
