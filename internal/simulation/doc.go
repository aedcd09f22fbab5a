// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

/*
Package simulation tracks in-progress consumption of catalog items.

A session moves through NONE -> STARTED -> {COMPLETED, CANCELLED, EXPIRED}.
Only STARTED sessions are held in memory; every terminal transition evicts
the session and finalizes its interaction record in the ledger.

	tracker := simulation.NewTracker(db, db, simulation.DefaultConfig(),
		simulation.WithNotifier(bus))

	res, err := tracker.Start(ctx, userID, models.ContentBook, 3)
	rep, err := tracker.Progress(ctx, res.SessionKey)
	done, err := tracker.Complete(ctx, res.SessionKey, 9, []string{"reread"})

# Rules

  - One live session per "{user_id}_{content_type}_{content_id}" key; a
    second Start on a live key fails with ErrAlreadyActive.
  - Progress is floor(elapsed/planned*100) clamped to [0,100], computed on
    demand, and never decreases.
  - While progress is above the event threshold, each poll has a fixed
    chance to append one flavor event, up to the event cap.
  - Complete and Cancel claim the session first; exactly one caller
    finalizes it. A failed ledger write releases the claim and leaves the
    session live.

# Concurrency

The SessionStore guards the key space. Each Session carries its own mutex
for the fields that change while it is live. Ledger and catalog calls are
never made with the store lock held.
*/
package simulation
