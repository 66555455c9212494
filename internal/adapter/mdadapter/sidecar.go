package mdadapter

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"path/filepath"
	"strings"

	_ "embed"

	"github.com/dustin/go-humanize"
	"github.com/jgivc/rsrequest/internal/entity"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"
)

const (
	funcNameBytes = "bytes"
	headerPairLen = 2
)

//go:embed files.tmpl
var defaultFilesTemplate string

// Frontmatter holds the request fields of a sidecar document.
type Frontmatter struct {
	URL          string               `yaml:"url"`
	Status       string               `yaml:"status"`
	Mime         string               `yaml:"mime"`
	Size         *uint64              `yaml:"size"`
	Filename     string               `yaml:"filename"`
	Referer      string               `yaml:"referer"`
	Headers      [][]string           `yaml:"headers"`
	Cookies      []string             `yaml:"cookies"`
	Files        []entity.RequestFile `yaml:"files"`
	SelectedFile string               `yaml:"selected_file"`
	Tags         []string             `yaml:"tags"`
	People       []string             `yaml:"people"`
	Albums       []string             `yaml:"albums"`
	Season       *uint32              `yaml:"season"`
	Episode      *uint32              `yaml:"episode"`
	Language     string               `yaml:"language"`
	Quality      *uint64              `yaml:"quality"`
}

type sidecarAdapter struct {
	fs   afero.Fs
	tmpl *template.Template
	log  *slog.Logger
}

func NewSidecarAdapter(log *slog.Logger) (*sidecarAdapter, error) {
	return NewSidecarAdapterWithFS(afero.NewOsFs(), log)
}

func NewSidecarAdapterWithFS(fs afero.Fs, log *slog.Logger) (*sidecarAdapter, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		funcNameBytes: humanize.IBytes,
	}).Parse(defaultFilesTemplate)
	if err != nil {
		return nil, fmt.Errorf("cannot parse files template: %w", err)
	}

	return &sidecarAdapter{
		fs:   fs,
		tmpl: tmpl,
		log:  log.With(slog.String("item", "SidecarAdapter")),
	}, nil
}

// ToRequest reads the sidecar document at path.
func (a *sidecarAdapter) ToRequest(path string) (*entity.Request, error) {
	for _, elem := range strings.Split(filepath.ToSlash(path), "/") {
		if elem == ".." {
			return nil, fmt.Errorf("invalid sidecar path %s: parent directory reference", path)
		}
	}

	src, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read sidecar %s: %w", path, err)
	}

	r, err := a.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("cannot parse sidecar %s: %w", path, err)
	}

	a.log.Debug("Read sidecar", slog.String("path", path), slog.String("url", r.URL))

	return r, nil
}

/*
Parse builds a request from a sidecar document: the frontmatter carries the
request fields and the markdown body, rendered to HTML, becomes the
description. The body may reference the file candidates with [[FILES]],
[[name]] and [[name|label]].
*/
func (a *sidecarAdapter) Parse(src []byte) (*entity.Request, error) {
	fm, err := readFrontmatter(src)
	if err != nil {
		return nil, err
	}

	r, err := fm.toRequest()
	if err != nil {
		return nil, err
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			&frontmatter.Extender{},
			extension.GFM,
			NewFilesExtension(requestFiles{r: r}, a.tmpl),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("cannot convert markdown: %w", err)
	}

	if content := strings.TrimSpace(buf.String()); content != "" {
		r.Description = &content
	}

	return r, nil
}

func readFrontmatter(src []byte) (*Frontmatter, error) {
	md := goldmark.New(goldmark.WithExtensions(&frontmatter.Extender{}))

	ctx := parser.NewContext()
	md.Parser().Parse(text.NewReader(src), parser.WithContext(ctx))

	data := frontmatter.Get(ctx)
	if data == nil {
		return nil, fmt.Errorf("no frontmatter found")
	}

	var fm Frontmatter
	if err := data.Decode(&fm); err != nil {
		return nil, fmt.Errorf("cannot decode frontmatter: %w", err)
	}

	return &fm, nil
}

func (fm *Frontmatter) toRequest() (*entity.Request, error) {
	r := entity.NewRequest(fm.URL)

	if fm.Status != "" {
		status, err := entity.ParseStatus(fm.Status)
		if err != nil {
			return nil, err
		}

		r.Status = status
	}

	r.Mime = optional(fm.Mime)
	r.Size = fm.Size
	r.Filename = optional(fm.Filename)
	r.Referer = optional(fm.Referer)
	r.SelectedFile = optional(fm.SelectedFile)
	r.Language = optional(fm.Language)
	r.Files = fm.Files
	r.Tags = fm.Tags
	r.People = fm.People
	r.Albums = fm.Albums
	r.Season = fm.Season
	r.Episode = fm.Episode
	r.Quality = fm.Quality

	for i, h := range fm.Headers {
		if len(h) != headerPairLen {
			return nil, fmt.Errorf("header %d: expected [name, value], got %d items", i, len(h))
		}

		r.AddHeader(h[0], h[1])
	}

	for _, line := range fm.Cookies {
		c, err := entity.ParseCookie(line)
		if err != nil {
			return nil, err
		}

		r.Cookies = append(r.Cookies, c)
	}

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	return r, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
