// Package airparif is the client for the AirParif bulletin, episode and map endpoints.
package airparif

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"air_bot/internal/fetcher"
	"air_bot/internal/model"
)

// Name is the provider name used in hashtags and file names.
const Name = "AirParif"

const dateLayout = "2006-01-02"

// Default endpoints and map settings.
const (
	DefaultAPIBaseURL    = "https://api.airparif.asso.fr"
	DefaultWMSBaseURL    = "https://magellan.airparif.asso.fr/geoserver/siteweb/wms"
	DefaultLayerToday    = "siteweb:vue_indice_atmo_2020_com"
	DefaultLayerTomorrow = "siteweb:vue_indice_atmo_2020_com_jp1"
	DefaultMapWidth      = 600
	DefaultMapHeight     = 500
)

// Settings holds the endpoints and map parameters of the client.
type Settings struct {
	APIBaseURL    string
	WMSBaseURL    string
	LayerToday    string
	LayerTomorrow string
	MapWidth      int
	MapHeight     int
}

// DefaultSettings returns the production AirParif settings.
func DefaultSettings() Settings {
	return Settings{
		APIBaseURL:    DefaultAPIBaseURL,
		WMSBaseURL:    DefaultWMSBaseURL,
		LayerToday:    DefaultLayerToday,
		LayerTomorrow: DefaultLayerTomorrow,
		MapWidth:      DefaultMapWidth,
		MapHeight:     DefaultMapHeight,
	}
}

// Client talks to the AirParif API and WMS server.
type Client struct {
	fetcher  *fetcher.Fetcher
	apiKey   string
	settings Settings
}

// New creates a Client authenticated with apiKey.
func New(client fetcher.HTTPClient, apiKey string, settings Settings) *Client {
	return &Client{
		fetcher:  fetcher.New(client),
		apiKey:   apiKey,
		settings: settings,
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return Name }

// SupportedActions returns the actions AirParif supports.
func SupportedActions() []model.Action {
	return []model.Action{model.ActionNow, model.ActionToday, model.ActionTomorrow, model.ActionEpisode}
}

// Actions returns the actions AirParif supports.
func (c *Client) Actions() []model.Action { return SupportedActions() }

type localized struct {
	FR string `json:"fr"`
}

// concentration is a [name, low, high] tuple.
type concentration struct {
	Name string
	Low  float64
	High float64
}

func (c *concentration) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 3 {
		return fmt.Errorf("concentration: want 3 fields, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &c.Name); err != nil {
		return fmt.Errorf("concentration name: %w", err)
	}
	if err := json.Unmarshal(raw[1], &c.Low); err != nil {
		return fmt.Errorf("concentration low: %w", err)
	}
	if err := json.Unmarshal(raw[2], &c.High); err != nil {
		return fmt.Errorf("concentration high: %w", err)
	}
	return nil
}

type dayBulletin struct {
	Available      bool            `json:"disponible"`
	Date           string          `json:"date"`
	Bulletin       localized       `json:"bulletin"`
	Concentrations []concentration `json:"concentrations"`
}

type bulletinResponse struct {
	Today    dayBulletin `json:"jour"`
	Tomorrow dayBulletin `json:"demain"`
}

type episodeResponse struct {
	Active   bool      `json:"actif"`
	Message  localized `json:"message"`
	Tomorrow struct {
		Active     bool `json:"actif"`
		Pollutants []struct {
			Name  string      `json:"nom"`
			Level json.Number `json:"niveau"`
		} `json:"polluants"`
	} `json:"demain"`
}

func (c *Client) header() http.Header {
	return http.Header{"X-Api-Key": {c.apiKey}}
}

// Bulletin fetches the forecast bulletin for horizon h.
// An unavailable bulletin is returned with Available set to false.
func (c *Client) Bulletin(ctx context.Context, h model.Horizon) (*model.Bulletin, error) {
	var resp bulletinResponse
	if err := c.fetcher.JSON(ctx, c.settings.APIBaseURL+"/indices/prevision/bulletin", c.header(), &resp); err != nil {
		return nil, fmt.Errorf("fetch bulletin: %w", err)
	}

	var day dayBulletin
	switch h {
	case model.HorizonToday:
		day = resp.Today
	case model.HorizonTomorrow:
		day = resp.Tomorrow
	default:
		return nil, fmt.Errorf("unsupported horizon %q", h)
	}

	b := &model.Bulletin{Horizon: h, Available: day.Available}
	if !day.Available {
		return b, nil
	}

	date, err := time.Parse(dateLayout, day.Date)
	if err != nil {
		return nil, fmt.Errorf("parse bulletin date %q: %w", day.Date, err)
	}
	b.Date = date
	b.Message = day.Bulletin.FR
	for _, p := range day.Concentrations {
		b.Pollutants = append(b.Pollutants, model.Pollutant{Name: p.Name, Low: p.Low, High: p.High})
	}
	return b, nil
}

// Episode fetches the current and upcoming pollution episode.
func (c *Client) Episode(ctx context.Context) (*model.Episode, error) {
	var resp episodeResponse
	if err := c.fetcher.JSON(ctx, c.settings.APIBaseURL+"/episodes/en-cours-et-prevus", c.header(), &resp); err != nil {
		return nil, fmt.Errorf("fetch episode: %w", err)
	}

	e := &model.Episode{
		Active:         resp.Active,
		TomorrowActive: resp.Tomorrow.Active,
		Message:        resp.Message.FR,
	}
	for _, p := range resp.Tomorrow.Pollutants {
		e.Pollutants = append(e.Pollutants, model.EpisodePollutant{Name: p.Name, Level: p.Level.String()})
	}
	return e, nil
}

// MapImage renders the air-quality index map for horizon h as a PNG stream.
func (c *Client) MapImage(ctx context.Context, h model.Horizon) (io.ReadCloser, error) {
	layer := c.settings.LayerToday
	if h == model.HorizonTomorrow {
		layer = c.settings.LayerTomorrow
	}

	rc, err := c.fetcher.Stream(ctx, c.settings.WMSBaseURL, c.mapQuery(layer))
	if err != nil {
		return nil, fmt.Errorf("render map: %w", err)
	}
	return rc, nil
}

func (c *Client) mapQuery(layer string) url.Values {
	return url.Values{
		"service":        {"WMS"},
		"version":        {"1.1.0"},
		"request":        {"GetMap"},
		"layers":         {strings.Join([]string{layer, "Administratif:comm_idf", "siteweb:idf_dept"}, ",")},
		"styles":         {"siteweb:nouvel_indice_polygones,poly_trait_blanc,poly_trait_blanc_50"},
		"bbox":           {"530000.0,2335000.0,695000.0,2475000.0"},
		"width":          {strconv.Itoa(c.settings.MapWidth)},
		"height":         {strconv.Itoa(c.settings.MapHeight)},
		"srs":            {"EPSG:27572"},
		"format":         {"image/png"},
		"format_options": {"layout:bulletin"},
	}
}
