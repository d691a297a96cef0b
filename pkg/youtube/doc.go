// Package youtube provides a small client for the YouTube Data API v3.
//
// # Overview
//
// The client covers the two read-only calls needed to find something to
// play: free-text search and playlist expansion. It supports context
// cancellation, retry with exponential backoff, structured errors and an
// optional response cache.
//
// # Quick Start
//
//	client, err := youtube.NewClient(youtube.Config{
//	    APIKey: "your-api-key",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	items, err := client.Search(ctx, "lofi hip hop", 5)
//	for _, item := range items {
//	    fmt.Println(item.Title, item.URL())
//	}
//
// # Playlists
//
// Searches asking for more than ten results include playlists. A playlist
// result is expanded into its videos with PlaylistItems:
//
//	videos, err := client.PlaylistItems(ctx, item.ID)
//	urls := youtube.URLs(videos)
//
// # Caching
//
// Any type with Get and Put methods can be passed as Config.Cache. Raw
// response bodies are stored under a key derived from the request, and the
// cache implementation decides when entries expire.
//
// # Error Handling
//
// API failures are returned as *Error values carrying the HTTP status and
// the reason reported by Google:
//
//	if errors.Is(err, youtube.ErrQuotaExceeded) {
//	    // wait until the daily quota resets
//	}
//
//	var ytErr *youtube.Error
//	if errors.As(err, &ytErr) && ytErr.Temporary() {
//	    // safe to retry later
//	}
package youtube
