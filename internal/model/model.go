// Package model defines the domain types used across the application.
package model

import "time"

// Action selects which publish pipeline variant runs.
type Action string

// Supported actions.
const (
	ActionNow      Action = "now"
	ActionToday    Action = "today"
	ActionTomorrow Action = "tomorrow"
	ActionEpisode  Action = "episode"
	ActionGIFToday Action = "giftoday"
)

// Horizon is the day being reported on.
type Horizon string

// Supported horizons.
const (
	HorizonToday    Horizon = "today"
	HorizonTomorrow Horizon = "tomorrow"
)

// Pollutant is a concentration range reported in a bulletin, in µg/m³.
type Pollutant struct {
	Name string
	Low  float64
	High float64
}

// Bulletin is a provider's daily air-quality summary for one horizon.
// Message, Date and Pollutants are only meaningful when Available is true.
type Bulletin struct {
	Horizon    Horizon
	Date       time.Time
	Available  bool
	Message    string
	Pollutants []Pollutant
}

// EpisodePollutant is a pollutant level reported in an episode alert.
// Level keeps the precision the provider sent.
type EpisodePollutant struct {
	Name  string
	Level string
}

// Episode is a pollution-episode alert.
type Episode struct {
	Active         bool
	TomorrowActive bool
	Message        string
	Pollutants     []EpisodePollutant
}

// MediaArtifact is a local media file owned by a single pipeline run.
type MediaArtifact struct {
	Path        string
	MIMEType    string
	Description string
	CreatedAt   time.Time
}

// Request is the resolved set of invocation parameters for one run.
type Request struct {
	Action  Action
	DryRun  bool
	Verbose bool
}

// Visibility and language used for every published status.
const (
	VisibilityUnlisted = "unlisted"
	LanguageFrench     = "fr"
)

// Post is a status ready to be published.
type Post struct {
	Text       string
	MediaIDs   []string
	Visibility string
	Language   string
}
