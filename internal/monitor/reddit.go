package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/crisiswatch/disaster-watch/internal/models"
)

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Author     string  `json:"author"`
	CreatedUTC float64 `json:"created_utc"`
}

func (m *Manager) fetchNewPosts(ctx context.Context, subreddit string) ([]models.Post, error) {
	url := fmt.Sprintf("%s/r/%s/new.json?limit=25", m.cfg.Monitor.BaseURL, subreddit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	// Reddit rejects requests without a descriptive user agent.
	req.Header.Set("User-Agent", m.cfg.Monitor.UserAgent)

	client := &http.Client{
		Timeout: 15 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data redditListing
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	posts := make([]models.Post, 0, len(data.Data.Children))
	for _, child := range data.Data.Children {
		p := child.Data
		posts = append(posts, models.Post{
			ID:        "reddit_" + p.ID,
			Platform:  "reddit",
			Title:     p.Title,
			Content:   p.Selftext,
			Author:    p.Author,
			Timestamp: time.Unix(int64(p.CreatedUTC), 0).UTC(),
		})
	}

	return posts, nil
}
