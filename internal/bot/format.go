package bot

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"air_bot/internal/model"
)

var bulletinTemplate = template.Must(template.New("bulletin").Parse(`💨 Bulletin #{{.Provider}} {{.Day}} ({{.Date}}) :

"{{.Message}}"

Concentrations des polluants:
{{.Pollutants}}`))

var episodeTemplate = template.Must(template.New("episode").Parse(`💨 #{{.Provider}} épisode de pollution demain :

"{{.Message}}"

Concentrations des polluants:
{{.Pollutants}}`))

// DayName returns the French name of horizon h.
func DayName(h model.Horizon) string {
	if h == model.HorizonTomorrow {
		return "demain"
	}
	return "aujourd'hui"
}

// FormatPollutants renders bulletin ranges one per line, rounded to whole µg/m³.
func FormatPollutants(ps []model.Pollutant) string {
	lines := make([]string, 0, len(ps))
	for _, p := range ps {
		lines = append(lines, fmt.Sprintf("👉 %s: de %s à %s µg/m³",
			p.Name, strconv.FormatFloat(p.Low, 'f', 0, 64), strconv.FormatFloat(p.High, 'f', 0, 64)))
	}
	return strings.Join(lines, "\n")
}

// FormatEpisodePollutants renders episode levels one per line.
func FormatEpisodePollutants(ps []model.EpisodePollutant) string {
	lines := make([]string, 0, len(ps))
	for _, p := range ps {
		lines = append(lines, fmt.Sprintf("👉 %s: %s µg/m³", p.Name, p.Level))
	}
	return strings.Join(lines, "\n")
}

// FormatBulletin renders the bulletin status text.
func FormatBulletin(provider string, b *model.Bulletin) (string, error) {
	var sb strings.Builder
	err := bulletinTemplate.Execute(&sb, map[string]string{
		"Provider":   provider,
		"Day":        DayName(b.Horizon),
		"Date":       b.Date.Format("02.01.2006"),
		"Message":    b.Message,
		"Pollutants": FormatPollutants(b.Pollutants),
	})
	if err != nil {
		return "", fmt.Errorf("render bulletin: %w", err)
	}
	return sb.String(), nil
}

// FormatEpisode renders the episode status text.
func FormatEpisode(provider string, e *model.Episode) (string, error) {
	var sb strings.Builder
	err := episodeTemplate.Execute(&sb, map[string]string{
		"Provider":   provider,
		"Message":    e.Message,
		"Pollutants": FormatEpisodePollutants(e.Pollutants),
	})
	if err != nil {
		return "", fmt.Errorf("render episode: %w", err)
	}
	return sb.String(), nil
}

// FormatNowStatus is the status text of the current map snapshot.
func FormatNowStatus(provider string) string {
	return fmt.Sprintf("💨 Carte de la qualité de l'air mesurée par #%s en ce moment", provider)
}

// MapDescription is the alt text of a map image.
// The current snapshot is described by its acquisition time.
func MapDescription(provider string, a model.Action, at time.Time) string {
	base := "Carte de la qualité de l'air mesurée par " + provider
	switch a {
	case model.ActionToday:
		return base + " aujourd'hui"
	case model.ActionTomorrow:
		return base + " demain"
	default:
		return base + " à " + at.Format("15h04")
	}
}

// FormatGIFStatus is the status text of the daily GIF.
func FormatGIFStatus(provider, region string, day time.Time) string {
	return fmt.Sprintf("💨 Qualité de l'air %s sur la région %s pour aujourd'hui (%s)", provider, region, day.Format("2006-01-02"))
}

// GIFDescription is the alt text of the daily GIF.
func GIFDescription(provider, region string, day time.Time) string {
	return fmt.Sprintf("GIF de la qualité de l'air %s sur la région %s pour aujourd'hui (%s)", provider, region, day.Format("2006-01-02"))
}
