// Package ics reads interview calendars published as iCalendar feeds:
// conditional HTTP fetch with a disk cache, VEVENT parsing and recurrence
// expansion.
package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	appLog "interviewpro/internal/log"
)

// Feed is one subscribed calendar.
type Feed struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// Payload is the body of a feed, fresh or served from the cache.
type Payload struct {
	Feed      Feed
	Body      []byte
	FromCache bool
}

type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher downloads feeds with If-None-Match / If-Modified-Since and keeps
// the last good body on disk so a failing server does not empty the board.
type Fetcher struct {
	client   *http.Client
	cacheDir string
}

// NewFetcher returns a Fetcher caching under cacheDir. A nil client gets a
// 15s timeout client.
func NewFetcher(cacheDir string, client *http.Client) *Fetcher {
	if cacheDir == "" {
		cacheDir = "./var/ics-cache"
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{client: client, cacheDir: cacheDir}
}

// Fetch downloads a single feed.
func (f *Fetcher) Fetch(ctx context.Context, feed Feed) (Payload, error) {
	if feed.URL == "" {
		return Payload{}, errors.New("ics: feed url is empty")
	}

	dir := f.cacheDirFor(feed.URL)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Payload{}, fmt.Errorf("ics: cache dir: %w", err)
	}
	meta, _ := readMeta(dir)
	cached, _ := os.ReadFile(filepath.Join(dir, "body.ics"))

	fallback := func(reason error) (Payload, error) {
		if len(cached) == 0 {
			return Payload{}, reason
		}
		appLog.Error("ics: fetch failed; serving cached body", reason, "feed", feed.Name, "url", redactURL(feed.URL))
		return Payload{Feed: feed, Body: cached, FromCache: true}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("ics: request: %w", err)
	}
	if meta.ETag != "" && len(cached) > 0 {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" && len(cached) > 0 {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	appLog.Debug("ics: fetch", "feed", feed.Name, "url", redactURL(feed.URL))
	resp, err := f.client.Do(req)
	if err != nil {
		return fallback(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fallback(err)
		}
		next := cacheMeta{
			URL:          feed.URL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := writeCache(dir, next, body); err != nil {
			appLog.Error("ics: cache write failed", err, "feed", feed.Name)
		}
		appLog.Info("ics: fetched", "feed", feed.Name, "bytes", len(body))
		return Payload{Feed: feed, Body: body}, nil

	case http.StatusNotModified:
		if len(cached) == 0 {
			return Payload{}, errors.New("ics: 304 without a cached body")
		}
		appLog.Debug("ics: not modified", "feed", feed.Name)
		return Payload{Feed: feed, Body: cached, FromCache: true}, nil

	default:
		return fallback(fmt.Errorf("ics: unexpected status %s", resp.Status))
	}
}

func (f *Fetcher) cacheDirFor(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

func readMeta(dir string) (cacheMeta, error) {
	var m cacheMeta
	data, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(data, &m)
	return m, err
}

func writeCache(dir string, meta cacheMeta, body []byte) error {
	// body first so meta never points at a missing body
	if err := os.WriteFile(filepath.Join(dir, "body.ics"), body, 0o600); err != nil {
		return err
	}
	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "meta.json"), data, 0o600)
}

// redactURL keeps only scheme and host; private feed URLs carry tokens in
// the path or query.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "ics://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
