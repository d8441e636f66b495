// Package social publishes statuses to a Mastodon account.
package social

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-mastodon"

	"air_bot/internal/model"
)

// Client wraps an authenticated Mastodon API client.
type Client struct {
	api *mastodon.Client
}

// New creates a Client for the account owning accessToken on instance.
func New(instance, accessToken string) *Client {
	return &Client{
		api: mastodon.NewClient(&mastodon.Config{
			Server:      instance,
			AccessToken: accessToken,
		}),
	}
}

// Verify checks the access token and returns the account handle.
func (c *Client) Verify(ctx context.Context) (string, error) {
	acct, err := c.api.GetAccountCurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("verify credentials: %w", err)
	}
	return acct.Acct, nil
}

// UploadMedia uploads the media file and returns its media ID.
func (c *Client) UploadMedia(ctx context.Context, media *model.MediaArtifact) (string, error) {
	f, err := os.Open(media.Path)
	if err != nil {
		return "", fmt.Errorf("open media: %w", err)
	}
	defer func() { _ = f.Close() }()

	att, err := c.api.UploadMediaFromMedia(ctx, &mastodon.Media{
		File:        f,
		Description: media.Description,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", media.Path, err)
	}
	return string(att.ID), nil
}

// PostStatus publishes post.
func (c *Client) PostStatus(ctx context.Context, post model.Post) error {
	toot := &mastodon.Toot{
		Status:     post.Text,
		Visibility: post.Visibility,
		Language:   post.Language,
	}
	for _, id := range post.MediaIDs {
		toot.MediaIDs = append(toot.MediaIDs, mastodon.ID(id))
	}

	if _, err := c.api.PostStatus(ctx, toot); err != nil {
		return fmt.Errorf("post status: %w", err)
	}
	return nil
}
