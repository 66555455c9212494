package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jgivc/rsrequest/internal/common"
	"github.com/jgivc/rsrequest/internal/config"
	"github.com/jgivc/rsrequest/internal/entity"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const (
	cookieFile = `# exported cookies
.example.com;false;/;true;1722364794.437907;sid;abc
`
	sidecarDoc = `---
url: https://example.com/show/1
filename: Shogun.2024.S01E01.1080p.WEB-DL.DDP5.1.H.264.mkv
---
First episode.
`
	requestJSON = `{"url":"https://example.com/movie","status":"intermediate","headers":[["referer","https://example.com"]]}`
)

func newTestApp(t *testing.T, setup func(cfg *config.Config)) *App {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/cookies.txt", []byte(cookieFile), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/work/shogun.md", []byte(sidecarDoc), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/work/other/broken.md", []byte("no frontmatter"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/work/movie.json", []byte(requestJSON), 0o644))

	cfg := &config.Config{}
	cfg.SetDefaults()
	cfg.Sidecar.WorkDir = "/work"
	if setup != nil {
		setup(cfg)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := NewWithFS(fs, cfg, log)
	require.NoError(t, err)

	return a
}

func TestInspectSidecar(t *testing.T) {
	a := newTestApp(t, func(cfg *config.Config) {
		cfg.Cookies.File = "/etc/cookies.txt"
	})

	r, err := a.Inspect("/work/shogun.md")
	require.NoError(t, err)

	require.Equal(t, []entity.Header{{Name: entity.CookieHeaderName, Value: "sid=abc"}}, r.Headers)
	require.Equal(t, entity.ResolutionFullHD, *r.Resolution)
	require.Equal(t, entity.VideoCodecH264, *r.VideoCodec)
	require.NotEmpty(t, r.Audio)
	require.Equal(t, uint32(1), *r.Season)
	require.Equal(t, uint32(1), *r.Episode)
	require.Equal(t, "<p>First episode.</p>", *r.Description)
}

func TestInspectJSON(t *testing.T) {
	a := newTestApp(t, nil)

	r, err := a.Inspect("/work/movie.json")
	require.NoError(t, err)
	require.Equal(t, entity.StatusIntermediate, r.Status)
	require.Equal(t, []entity.Header{{Name: "referer", Value: "https://example.com"}}, r.Headers)

	_, err = a.Inspect("/work/missing.json")
	require.Error(t, err)
}

func TestScan(t *testing.T) {
	a := newTestApp(t, nil)

	items, err := a.Scan(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "/work/shogun.md", items[0].Path)
	require.Equal(t, entity.ResolutionFullHD, *items[0].Request.Resolution)

	items, err = a.Scan(context.Background(), "/work/other")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestNewWithFSErrors(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	testCases := []struct {
		name  string
		setup func(cfg *config.Config)
	}{
		{
			name:  "missing tables file",
			setup: func(cfg *config.Config) { cfg.Metadata.TablesFile = "/etc/tables.yml" },
		},
		{
			name:  "missing cookie file",
			setup: func(cfg *config.Config) { cfg.Cookies.File = "/etc/nope.txt" },
		},
		{
			name:  "unknown cookie format",
			setup: func(cfg *config.Config) { cfg.Cookies.Format = "json" },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.SetDefaults()
			tc.setup(cfg)

			_, err := NewWithFS(afero.NewMemMapFs(), cfg, log)
			require.Error(t, err)
		})
	}
}

type declinePlugin struct{}

func (declinePlugin) Name() string {
	return "decline"
}

func (declinePlugin) Resolve(_ context.Context, env *entity.RequestWithCredential) (*entity.Request, error) {
	r := env.Request.Clone()
	r.Status = entity.StatusNeedParsing

	return r, nil
}

func (declinePlugin) Add(context.Context, *entity.RequestWithCredential) error {
	return nil
}

func TestNewDriver(t *testing.T) {
	a := newTestApp(t, nil)

	d, err := a.NewDriver(nil, declinePlugin{})
	require.NoError(t, err)

	res, err := d.Run(context.Background(), &entity.RequestWithCredential{Request: *entity.NewRequest("https://x")})
	require.NoError(t, err)
	require.Equal(t, entity.StatusNeedParsing, res.Request.Status)

	_, err = a.NewDriver(nil, declinePlugin{}, declinePlugin{})
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{config.LogLevelDebug, config.LogLevelInfo, config.LogLevelWarn, config.LogLevelError} {
		log, err := NewLogger(level, io.Discard)
		require.NoError(t, err)
		require.NotNil(t, log)
	}

	_, err := NewLogger("trace", io.Discard)
	require.Error(t, err)
}

func TestInspectUnknownFile(t *testing.T) {
	a := newTestApp(t, nil)

	_, err := a.Inspect("/work/nope.md")
	require.Error(t, err)
	require.NotErrorIs(t, err, common.ErrEmptyURL)
}
