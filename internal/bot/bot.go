// Package bot runs the publish pipeline: fetch, validate, format, acquire
// media, publish and clean up.
package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"air_bot/internal/model"
)

// Provider is an air-quality data provider.
// It also implements the source interfaces backing its actions.
type Provider interface {
	Name() string
	Actions() []model.Action
}

// BulletinSource fetches daily bulletins.
type BulletinSource interface {
	Bulletin(ctx context.Context, h model.Horizon) (*model.Bulletin, error)
}

// EpisodeSource fetches pollution-episode alerts.
type EpisodeSource interface {
	Episode(ctx context.Context) (*model.Episode, error)
}

// MapSource renders map images.
type MapSource interface {
	MapImage(ctx context.Context, h model.Horizon) (io.ReadCloser, error)
}

// GIFSource downloads the animated map of the day.
type GIFSource interface {
	Region() string
	GIF(ctx context.Context) (io.ReadCloser, error)
}

// Publisher posts statuses to the social account.
type Publisher interface {
	UploadMedia(ctx context.Context, media *model.MediaArtifact) (string, error)
	PostStatus(ctx context.Context, post model.Post) error
}

// Options tunes media handling.
type Options struct {
	MediaDir   string
	MediaDelay time.Duration
}

// Bot executes one action for one provider.
type Bot struct {
	provider   Provider
	publisher  Publisher
	log        *slog.Logger
	mediaDir   string
	mediaDelay time.Duration
	now        func() time.Time
	sleep      func(time.Duration)
}

// New creates a Bot publishing p's data through pub.
func New(p Provider, pub Publisher, opts Options, log *slog.Logger) *Bot {
	return &Bot{
		provider:   p,
		publisher:  pub,
		log:        log,
		mediaDir:   opts.MediaDir,
		mediaDelay: opts.MediaDelay,
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// Validate checks that the provider supports req.Action.
func (b *Bot) Validate(req model.Request) error {
	if !slices.Contains(b.provider.Actions(), req.Action) {
		return &UnknownActionError{Provider: b.provider.Name(), Action: req.Action}
	}
	return nil
}

// Run executes req.Action end to end. Any media file created along the way
// is removed before Run returns.
func (b *Bot) Run(ctx context.Context, req model.Request) error {
	if err := b.Validate(req); err != nil {
		return err
	}

	b.log.Info("running action", "provider", b.provider.Name(), "action", req.Action, "dry_run", req.DryRun)

	switch req.Action {
	case model.ActionNow:
		return b.snapshot(ctx, req)
	case model.ActionToday:
		return b.bulletin(ctx, req, model.HorizonToday)
	case model.ActionTomorrow:
		return b.bulletin(ctx, req, model.HorizonTomorrow)
	case model.ActionEpisode:
		return b.episode(ctx, req)
	case model.ActionGIFToday:
		return b.gifToday(ctx, req)
	default:
		return &UnknownActionError{Provider: b.provider.Name(), Action: req.Action}
	}
}

func source[T any](p Provider, what string) (T, error) {
	s, ok := p.(T)
	if !ok {
		return s, fmt.Errorf("%s does not provide %s", p.Name(), what)
	}
	return s, nil
}

func (b *Bot) mapFileName() string {
	return fmt.Sprintf("%s_map_%s.png", strings.ToLower(b.provider.Name()), b.now().Format("20060102150405"))
}

func (b *Bot) snapshot(ctx context.Context, req model.Request) error {
	maps, err := source[MapSource](b.provider, "map images")
	if err != nil {
		return err
	}

	media, release, err := b.acquireMedia(ctx, b.mapFileName(), mimePNG, func(ctx context.Context) (io.ReadCloser, error) {
		return maps.MapImage(ctx, model.HorizonToday)
	})
	if err != nil {
		return err
	}
	defer release()

	name := b.provider.Name()
	media.Description = MapDescription(name, req.Action, media.CreatedAt)
	return b.publish(ctx, req, FormatNowStatus(name), media)
}

func (b *Bot) bulletin(ctx context.Context, req model.Request, h model.Horizon) error {
	bulletins, err := source[BulletinSource](b.provider, "bulletins")
	if err != nil {
		return err
	}
	maps, err := source[MapSource](b.provider, "map images")
	if err != nil {
		return err
	}

	bl, err := bulletins.Bulletin(ctx, h)
	if err != nil {
		return err
	}
	if !bl.Available {
		return bulletinUnavailable(h)
	}

	name := b.provider.Name()
	text, err := FormatBulletin(name, bl)
	if err != nil {
		return err
	}
	b.log.Debug("rendered bulletin", "text", text)

	media, release, err := b.acquireMedia(ctx, b.mapFileName(), mimePNG, func(ctx context.Context) (io.ReadCloser, error) {
		return maps.MapImage(ctx, h)
	})
	if err != nil {
		return err
	}
	defer release()

	media.Description = MapDescription(name, req.Action, media.CreatedAt)
	return b.publish(ctx, req, text, media)
}

func (b *Bot) episode(ctx context.Context, req model.Request) error {
	episodes, err := source[EpisodeSource](b.provider, "episodes")
	if err != nil {
		return err
	}

	e, err := episodes.Episode(ctx)
	if err != nil {
		return err
	}
	if !e.Active {
		return ErrNoEpisode
	}
	if !e.TomorrowActive {
		return ErrNoEpisodeTomorrow
	}
	if req.DryRun {
		b.log.Info("dry run enabled, not publishing episode")
		return nil
	}

	text, err := FormatEpisode(b.provider.Name(), e)
	if err != nil {
		return err
	}
	return b.publish(ctx, req, text, nil)
}

func (b *Bot) gifToday(ctx context.Context, req model.Request) error {
	gifs, err := source[GIFSource](b.provider, "GIFs")
	if err != nil {
		return err
	}

	b.log.Info("fetching day gif", "provider", b.provider.Name())

	day := b.now()
	name := b.provider.Name()
	file := fmt.Sprintf("%s_gif_%s.gif", strings.ToLower(name), day.Format("2006-01-02"))

	media, release, err := b.acquireMedia(ctx, file, mimeGIF, gifs.GIF)
	if err != nil {
		return err
	}
	defer release()

	media.Description = GIFDescription(name, gifs.Region(), day)
	return b.publish(ctx, req, FormatGIFStatus(name, gifs.Region(), day), media)
}

// publish uploads media if any, then posts text. It is a no-op in dry-run mode.
func (b *Bot) publish(ctx context.Context, req model.Request, text string, media *model.MediaArtifact) error {
	if req.DryRun {
		b.log.Info("dry run enabled, not publishing", "text", text)
		return nil
	}

	post := model.Post{
		Text:       text,
		Visibility: model.VisibilityUnlisted,
		Language:   model.LanguageFrench,
	}
	if media != nil {
		id, err := b.publisher.UploadMedia(ctx, media)
		if err != nil {
			return fmt.Errorf("upload media: %w", err)
		}
		b.log.Debug("uploaded media", "id", id, "path", media.Path)

		// The server processes uploads asynchronously.
		b.sleep(b.mediaDelay)
		post.MediaIDs = []string{id}
	}

	if err := b.publisher.PostStatus(ctx, post); err != nil {
		return fmt.Errorf("publish status: %w", err)
	}
	b.log.Info("published status", "provider", b.provider.Name(), "action", req.Action, "media", len(post.MediaIDs))
	return nil
}
