// Package atmosud is the client for the AtmoSud hourly map GIF.
package atmosud

import (
	"context"
	"fmt"
	"io"

	"air_bot/internal/fetcher"
	"air_bot/internal/model"
)

// Name is the provider name used in texts and file names.
const Name = "AtmoSud"

// DefaultGIFURL is the animated map of the current day.
const DefaultGIFURL = "https://widgets.atmosud.org/siam/cartes-horaires/accueil/icairh.gif"

// Client downloads the AtmoSud GIF.
type Client struct {
	fetcher *fetcher.Fetcher
	gifURL  string
}

// New creates a Client fetching gifURL.
func New(client fetcher.HTTPClient, gifURL string) *Client {
	return &Client{fetcher: fetcher.New(client), gifURL: gifURL}
}

// Name returns the provider name.
func (c *Client) Name() string { return Name }

// Region is the area covered by the GIF.
func (c *Client) Region() string { return "PACA" }

// SupportedActions returns the actions AtmoSud supports.
func SupportedActions() []model.Action {
	return []model.Action{model.ActionGIFToday}
}

// Actions returns the actions AtmoSud supports.
func (c *Client) Actions() []model.Action { return SupportedActions() }

// GIF streams the animated map of the current day.
func (c *Client) GIF(ctx context.Context) (io.ReadCloser, error) {
	rc, err := c.fetcher.Stream(ctx, c.gifURL, nil)
	if err != nil {
		return nil, fmt.Errorf("download gif: %w", err)
	}
	return rc, nil
}
