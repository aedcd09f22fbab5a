// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/mediarec/internal/cache"
	"github.com/tomtom215/mediarec/internal/models"
)

// Cache holds computed recommendation results per user and request.
type Cache struct {
	c *cache.Cache
}

// NewCache creates a result cache. A zero ttl disables caching.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		return &Cache{}
	}
	return &Cache{c: cache.New("recommendations", ttl)}
}

type cacheParams struct {
	ContentType models.ContentType `json:"content_type"`
	Limit       int                `json:"limit"`
}

func userPrefix(userID int64) string {
	return fmt.Sprintf("rec:%d", userID)
}

func (rc *Cache) key(req Request) string {
	return cache.GenerateKey(userPrefix(req.UserID), cacheParams{req.ContentType, req.Limit})
}

func (rc *Cache) get(req Request) (*Result, bool) {
	if rc == nil || rc.c == nil {
		return nil, false
	}
	v, ok := rc.c.Get(rc.key(req))
	if !ok {
		return nil, false
	}
	res, ok := v.(*Result)
	return res, ok
}

func (rc *Cache) put(req Request, res *Result) {
	if rc == nil || rc.c == nil {
		return
	}
	rc.c.Set(rc.key(req), res)
}

// InvalidateUser drops every cached result for userID and returns how many
// entries were removed.
func (rc *Cache) InvalidateUser(userID int64) int {
	if rc == nil || rc.c == nil {
		return 0
	}
	return rc.c.DeletePrefix(userPrefix(userID) + ":")
}

// Close stops the cache's background sweep.
func (rc *Cache) Close() {
	if rc != nil && rc.c != nil {
		rc.c.Close()
	}
}
