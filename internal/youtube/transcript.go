// Package youtube fetches caption transcripts so users can submit a lecture
// video link instead of pasted notes.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

var (
	videoIDPattern    = regexp.MustCompile(`(?:youtube\.com\/(?:[^\/]+\/.+\/|(?:v|e(?:mbed)?)\/|.*[?&]v=)|youtu\.be\/)([^"&?\/\s]{11})`)
	transcriptPattern = regexp.MustCompile(`<text start="([^"]*)" dur="([^"]*)">([^<]*)<\/text>`)
	titlePattern      = regexp.MustCompile(`<title>(.+?) - YouTube</title>`)
)

// IsVideoURL reports whether the text looks like a single YouTube link.
func IsVideoURL(text string) bool {
	text = strings.TrimSpace(text)
	if strings.ContainsAny(text, " \n\t") {
		return false
	}
	return videoIDPattern.MatchString(text)
}

// Client fetches transcripts from YouTube's caption tracks.
type Client struct {
	http *http.Client
}

func NewClient() *Client {
	return &Client{http: &http.Client{Timeout: 30 * time.Second}}
}

// Transcript returns the full caption text and the video title for a video
// URL or bare 11-character video ID. Videos without captions are an error.
func (c *Client) Transcript(ctx context.Context, url string) (text, title string, err error) {
	videoID, err := extractVideoID(url)
	if err != nil {
		return "", "", err
	}

	pageBody, err := c.get(ctx, "https://www.youtube.com/watch?v="+videoID)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch video page: %w", err)
	}

	if m := titlePattern.FindSubmatch(pageBody); len(m) > 1 {
		title = html.UnescapeString(string(m[1]))
	}

	trackURL, err := captionTrackURL(string(pageBody), videoID)
	if err != nil {
		return "", "", err
	}

	trackBody, err := c.get(ctx, trackURL)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch transcript track: %w", err)
	}

	var sb strings.Builder
	for _, m := range transcriptPattern.FindAllStringSubmatch(string(trackBody), -1) {
		sb.WriteString(html.UnescapeString(m[3]))
		sb.WriteString(" ")
	}
	text = strings.TrimSpace(sb.String())
	if text == "" {
		return "", "", fmt.Errorf("transcript for video %s is empty", videoID)
	}
	return text, title, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// captionTrackURL digs the first caption track out of the watch-page HTML.
func captionTrackURL(pageHTML, videoID string) (string, error) {
	parts := strings.Split(pageHTML, `"captions":`)
	if len(parts) <= 1 {
		return "", fmt.Errorf("no captions available for video %s", videoID)
	}

	end := strings.Index(parts[1], `,"videoDetails`)
	if end < 0 {
		return "", fmt.Errorf("unexpected captions payload for video %s", videoID)
	}

	var captions struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []struct {
				BaseURL      string `json:"baseUrl"`
				LanguageCode string `json:"languageCode"`
			} `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	}
	if err := json.Unmarshal([]byte(parts[1][:end]), &captions); err != nil {
		return "", fmt.Errorf("failed to parse captions data: %w", err)
	}

	tracks := captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return "", fmt.Errorf("no transcripts available for video %s", videoID)
	}
	return tracks[0].BaseURL, nil
}

func extractVideoID(url string) (string, error) {
	if len(url) == 11 {
		return url, nil
	}
	if m := videoIDPattern.FindStringSubmatch(url); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("invalid YouTube URL or video ID")
}
