// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

/*
Package cache is a small TTL cache shared by the recommendation engine and
the authorization decision cache.

Keys are strings; scope them with a prefix so a whole scope can be dropped
with DeletePrefix:

	c := cache.New("recommendations", 10*time.Minute)
	defer c.Close()

	key := cache.GenerateKey(fmt.Sprintf("rec:%d", userID), params)
	c.Set(key, result)
	...
	c.DeletePrefix(fmt.Sprintf("rec:%d:", userID))

Lookups and evictions are exported as cache_* metrics labelled
with the cache name.
*/
package cache
