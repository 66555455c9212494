package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jgivc/rsrequest/internal/adapter/cookiefile"
	"github.com/jgivc/rsrequest/internal/adapter/mdadapter"
	"github.com/jgivc/rsrequest/internal/config"
	"github.com/jgivc/rsrequest/internal/entity"
	"github.com/jgivc/rsrequest/internal/metadata"
	"github.com/jgivc/rsrequest/internal/service/resolve"
	"github.com/jgivc/rsrequest/internal/storage/sidecar"
	"github.com/spf13/afero"
)

const (
	extJSON = ".json"
)

type CookieReader interface {
	ReadFile(path string) (entity.Cookies, error)
}

type SidecarAdapter interface {
	ToRequest(path string) (*entity.Request, error)
}

type SidecarStorage interface {
	Scan(ctx context.Context) ([]*sidecar.Item, error)
}

type App struct {
	fs        afero.Fs
	cfg       *config.Config
	extractor *metadata.Extractor
	cookies   CookieReader
	sidecars  SidecarAdapter
	storage   SidecarStorage
	preparer  *resolve.Preparer
	log       *slog.Logger
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	return NewWithFS(afero.NewOsFs(), cfg, log)
}

/*
NewWithFS wires the application: metadata tables (defaults or the configured
tables file), the filename extractor, the cookie reader, the sidecar adapter
and the request preparer. Cookies of the configured cookie file are added to
every prepared request.
*/
func NewWithFS(fs afero.Fs, cfg *config.Config, log *slog.Logger) (*App, error) {
	tables := metadata.DefaultTables()
	if cfg.Metadata.TablesFile != "" {
		t, err := metadata.LoadTables(fs, cfg.Metadata.TablesFile)
		if err != nil {
			return nil, err
		}

		tables = t
		log.Info("Loaded metadata tables", slog.String("path", cfg.Metadata.TablesFile))
	}

	cookies, err := cookiefile.NewCookieReaderWithFS(fs, &cfg.Cookies, log)
	if err != nil {
		return nil, err
	}

	var defaultCookies entity.Cookies
	if cfg.Cookies.File != "" {
		defaultCookies, err = cookies.ReadFile(cfg.Cookies.File)
		if err != nil {
			return nil, err
		}
	}

	sidecars, err := mdadapter.NewSidecarAdapterWithFS(fs, log)
	if err != nil {
		return nil, err
	}

	extractor := metadata.NewExtractor(tables)

	return &App{
		fs:        fs,
		cfg:       cfg,
		extractor: extractor,
		cookies:   cookies,
		sidecars:  sidecars,
		storage:   sidecar.NewSidecarStorageWithFS(fs, sidecars, &cfg.Sidecar, log),
		preparer:  resolve.NewPreparer(extractor, defaultCookies, log),
		log:       log.With(slog.String("item", "App")),
	}, nil
}

// NewLogger returns a text logger writing to w at the given config level.
func NewLogger(level string, w io.Writer) (*slog.Logger, error) {
	lo := &slog.HandlerOptions{}
	switch level {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		return nil, fmt.Errorf("unknown log level: %q", level)
	}

	return slog.New(slog.NewTextHandler(w, lo)), nil
}

func (a *App) Cookies(path string) (entity.Cookies, error) {
	return a.cookies.ReadFile(path)
}

func (a *App) Filename(name string) entity.FilenameMetadata {
	return a.extractor.Parse(name)
}

// Inspect reads a request from a sidecar document or a JSON file and
// prepares it.
func (a *App) Inspect(path string) (*entity.Request, error) {
	var (
		r   *entity.Request
		err error
	)

	if strings.EqualFold(filepath.Ext(path), extJSON) {
		r, err = a.readJSON(path)
	} else {
		r, err = a.sidecars.ToRequest(path)
	}

	if err != nil {
		a.log.Error("Cannot inspect request", slog.String("path", path), slog.Any("error", err))

		return nil, err
	}

	a.preparer.Prepare(r)

	return r, nil
}

func (a *App) readJSON(path string) (*entity.Request, error) {
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read request %s: %w", path, err)
	}

	r := &entity.Request{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("cannot decode request %s: %w", path, err)
	}

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request %s: %w", path, err)
	}

	return r, nil
}

// Scan reads and prepares every sidecar document of dir. An empty dir scans
// the configured work dir.
func (a *App) Scan(ctx context.Context, dir string) ([]*sidecar.Item, error) {
	cfg := a.cfg.Sidecar
	storage := a.storage
	if dir != "" && dir != cfg.WorkDir {
		cfg.WorkDir = dir
		storage = sidecar.NewSidecarStorageWithFS(a.fs, a.sidecars, &cfg, a.log)
	}

	items, err := storage.Scan(ctx)
	if err != nil {
		a.log.Error("Cannot scan", slog.String("work_dir", cfg.WorkDir), slog.Any("error", err))

		return nil, fmt.Errorf("cannot scan sidecars: %w", err)
	}

	for _, item := range items {
		a.preparer.Prepare(item.Request)
	}

	a.log.Info("Scan storage dir", slog.String("work_dir", cfg.WorkDir), slog.Int("count", len(items)))

	return items, nil
}

// NewDriver returns a resolve driver over the given plugins.
func (a *App) NewDriver(selector resolve.FileSelector, plugins ...resolve.Plugin) (*resolve.Driver, error) {
	reg, err := resolve.NewRegistry(plugins...)
	if err != nil {
		return nil, fmt.Errorf("cannot register plugins: %w", err)
	}

	return resolve.NewDriver(reg, selector, &a.cfg.Resolve, a.log), nil
}
