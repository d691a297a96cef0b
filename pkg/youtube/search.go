package youtube

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/samber/lo"
)

const (
	// DefaultMaxResults is used when Search is called with maxResults <= 0.
	DefaultMaxResults = 5

	// Above this many results playlists are searched for too.
	playlistThreshold = 10

	maxPageSize      = 50
	maxPlaylistPages = 4
)

// Search runs a free-text search and returns results in API order. Results
// without a video or playlist id are dropped.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Item, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults > maxPageSize {
		maxResults = maxPageSize
	}

	searchType := "video"
	if maxResults > playlistThreshold {
		searchType = "video,playlist"
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", searchType)
	params.Set("maxResults", strconv.Itoa(maxResults))

	cacheKey := fmt.Sprintf("search:%s:%d:%s", searchType, maxResults, query)

	var resp searchResponse
	if err := c.getJSON(ctx, cacheKey, "search", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	items := lo.FilterMap(resp.Items, func(raw searchResult, _ int) (Item, bool) {
		item := Item{
			Title:       unescape(raw.Snippet.Title),
			Channel:     unescape(raw.Snippet.ChannelTitle),
			Description: unescape(raw.Snippet.Description),
		}
		switch {
		case raw.ID.VideoID != "":
			item.Kind, item.ID = KindVideo, raw.ID.VideoID
		case raw.ID.PlaylistID != "":
			item.Kind, item.ID = KindPlaylist, raw.ID.PlaylistID
		default:
			return Item{}, false
		}
		return item, true
	})

	c.logDebugf("youtube: search %q returned %d usable items", query, len(items))
	return items, nil
}

// PlaylistItems returns the videos of a playlist in playlist order,
// following pagination for up to 200 entries.
func (c *Client) PlaylistItems(ctx context.Context, playlistID string) ([]Item, error) {
	var items []Item
	pageToken := ""

	for page := 0; page < maxPlaylistPages; page++ {
		params := url.Values{}
		params.Set("part", "snippet")
		params.Set("playlistId", playlistID)
		params.Set("maxResults", strconv.Itoa(maxPageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		cacheKey := fmt.Sprintf("playlist:%s:%s", playlistID, pageToken)

		var resp playlistItemsResponse
		if err := c.getJSON(ctx, cacheKey, "playlistItems", params, &resp); err != nil {
			return nil, fmt.Errorf("failed to list playlist %s: %w", playlistID, err)
		}

		for _, raw := range resp.Items {
			id := raw.Snippet.ResourceID.VideoID
			if id == "" {
				continue
			}
			items = append(items, Item{
				Kind:    KindVideo,
				ID:      id,
				Title:   unescape(raw.Snippet.Title),
				Channel: unescape(raw.Snippet.ChannelTitle),
			})
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return items, nil
}

// URLs maps items to their playable URLs.
func URLs(items []Item) []string {
	return lo.Map(items, func(item Item, _ int) string {
		return item.URL()
	})
}
