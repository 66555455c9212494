package mdadapter

import (
	"html/template"

	"github.com/jgivc/rsrequest/internal/entity"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

type FileResolver interface {
	GetFile(name string) (entity.RequestFile, error)
	GetFiles() []entity.RequestFile
	Selected(name string) bool
}

type FilesExtension struct {
	r    FileResolver
	tmpl *template.Template
}

func NewFilesExtension(r FileResolver, tmpl *template.Template) goldmark.Extender {
	return &FilesExtension{r: r, tmpl: tmpl}
}

func (e *FilesExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithInlineParsers(
			util.Prioritized(NewFileDirectiveParser(), 199),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(NewFileDirectiveRenderer(e.r, e.tmpl), 199),
		),
	)
}

// requestFiles resolves directives against the file candidates of a request.
type requestFiles struct {
	r *entity.Request
}

func (f requestFiles) GetFile(name string) (entity.RequestFile, error) {
	return f.r.File(name)
}

func (f requestFiles) GetFiles() []entity.RequestFile {
	return f.r.Files
}

func (f requestFiles) Selected(name string) bool {
	return f.r.SelectedFile != nil && *f.r.SelectedFile == name
}
