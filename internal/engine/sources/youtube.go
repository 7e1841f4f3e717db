// Package sources talks to the external YouTube surfaces the server needs:
// caption tracks and video search.
package sources

// YouTube implementation is split across three files by responsibility:
//   youtube_innertube.go — Innertube API wire types and constants
//   youtube_captions.go  — caption fetching (watch page scrape + ANDROID player fallback)
//   youtube_search.go    — video search (Data API v3 + ytInitialData scraping)
