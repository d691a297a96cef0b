package youtube

import (
	"html"
	"strings"
)

// Kind distinguishes videos from playlists.
type Kind string

const (
	KindVideo    Kind = "video"
	KindPlaylist Kind = "playlist"
)

// Item is a single search result or playlist entry.
type Item struct {
	Kind        Kind
	ID          string
	Title       string
	Channel     string
	Description string
}

// URL returns the watch or playlist URL for the item.
func (i Item) URL() string {
	if i.Kind == KindPlaylist {
		return "https://www.youtube.com/playlist?list=" + i.ID
	}
	return VideoURL(i.ID)
}

// VideoURL returns the watch URL for a video id.
func VideoURL(id string) string {
	return "https://youtube.com/watch?v=" + id
}

// Label is the picker line for the item.
func (i Item) Label() string {
	var sb strings.Builder
	sb.WriteString(i.Title)
	if i.Channel != "" {
		sb.WriteString(" · ")
		sb.WriteString(i.Channel)
	}
	if i.Kind == KindPlaylist {
		sb.WriteString(" [playlist]")
	}
	return sb.String()
}

type snippet struct {
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	Description  string `json:"description"`
	ResourceID   struct {
		VideoID string `json:"videoId"`
	} `json:"resourceId"`
}

type searchResult struct {
	ID struct {
		Kind       string `json:"kind"`
		VideoID    string `json:"videoId"`
		PlaylistID string `json:"playlistId"`
	} `json:"id"`
	Snippet snippet `json:"snippet"`
}

type searchResponse struct {
	NextPageToken string         `json:"nextPageToken"`
	Items         []searchResult `json:"items"`
}

type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet snippet `json:"snippet"`
	} `json:"items"`
}

// The API returns titles HTML-escaped.
func unescape(s string) string {
	return html.UnescapeString(s)
}
