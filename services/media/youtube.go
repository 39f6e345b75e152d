package media

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const youtubeVideosEndpoint = "https://www.googleapis.com/youtube/v3/videos"

// YoutubeChecker validates videos through the YouTube Data API v3.
type YoutubeChecker struct {
	apiKey string
	client *http.Client
}

// NewYoutubeChecker creates a checker using the given API key
func NewYoutubeChecker(apiKey string) *YoutubeChecker {
	return &YoutubeChecker{
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type youtubeVideosResponse struct {
	Items []struct {
		ID     string `json:"id"`
		Status struct {
			UploadStatus  string `json:"uploadStatus"`
			PrivacyStatus string `json:"privacyStatus"`
			Embeddable    bool   `json:"embeddable"`
		} `json:"status"`
	} `json:"items"`
}

// Check queries the video's status. An empty items list means the video is
// deleted or never existed; a private or unembeddable video is reported
// with the matching verdict.
func (y *YoutubeChecker) Check(ctx context.Context, videoID string) (Verdict, error) {
	query := url.Values{}
	query.Set("part", "status")
	query.Set("id", videoID)
	query.Set("key", y.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		youtubeVideosEndpoint+"?"+query.Encode(), nil)
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to build video status request: %w", err)
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("video status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Verdict{}, fmt.Errorf("video status request returned %d", resp.StatusCode)
	}

	var body youtubeVideosResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Verdict{}, fmt.Errorf("failed to decode video status response: %w", err)
	}

	if len(body.Items) == 0 {
		return Verdict{Kind: VerdictUnavailable, Detail: "video not found"}, nil
	}

	status := body.Items[0].Status
	if status.UploadStatus == "deleted" || status.UploadStatus == "rejected" {
		return Verdict{Kind: VerdictUnavailable, Detail: "upload status: " + status.UploadStatus}, nil
	}
	if status.PrivacyStatus == "private" {
		return Verdict{Kind: VerdictUnavailable, Detail: "video is private"}, nil
	}
	if !status.Embeddable {
		return Verdict{Kind: VerdictEmbedDisabled, Detail: "embedding disabled by uploader"}, nil
	}

	return Verdict{Kind: VerdictValid}, nil
}
