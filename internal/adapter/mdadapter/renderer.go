package mdadapter

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/jgivc/rsrequest/internal/entity"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

const (
	tmplNameFile  = "FILE"
	tmplNameFiles = "FILES"
)

// FileView is the data passed to the FILE template.
type FileView struct {
	Name     string
	Label    string
	Size     uint64
	Mime     string
	Selected bool
}

type FileDirectiveRenderer struct {
	r    FileResolver
	tmpl *template.Template
}

func NewFileDirectiveRenderer(r FileResolver, tmpl *template.Template) renderer.NodeRenderer {
	return &FileDirectiveRenderer{r: r, tmpl: tmpl}
}

func (r *FileDirectiveRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindFileDirective, r.renderFileDirective)
}

func (r *FileDirectiveRenderer) renderFileDirective(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	directive, ok := n.(*FileDirective)
	if !ok {
		return ast.WalkStop, fmt.Errorf("unexpected node %T, expected *FileDirective", n)
	}

	if directive.AllFiles {
		files := r.r.GetFiles()
		views := make([]FileView, 0, len(files))
		for _, f := range files {
			views = append(views, r.view(f, ""))
		}

		data, err := r.renderTemplate(tmplNameFiles, views)
		if err != nil {
			return ast.WalkStop, err
		}

		w.Write(data)

		return ast.WalkContinue, nil
	}

	file, err := r.r.GetFile(directive.Filename)
	if err != nil {
		return ast.WalkStop, fmt.Errorf("cannot get file %s: %w", directive.Filename, err)
	}

	data, err := r.renderTemplate(tmplNameFile, r.view(file, directive.Label))
	if err != nil {
		return ast.WalkStop, err
	}

	w.Write(data)

	return ast.WalkContinue, nil
}

func (r *FileDirectiveRenderer) view(f entity.RequestFile, label string) FileView {
	v := FileView{
		Name:     f.Name,
		Label:    label,
		Size:     f.Size,
		Selected: r.r.Selected(f.Name),
	}

	if v.Label == "" {
		v.Label = f.Name
	}

	if f.Mime != nil {
		v.Mime = *f.Mime
	}

	return v
}

func (r *FileDirectiveRenderer) renderTemplate(tmplName string, data any) ([]byte, error) {
	tmpl := r.tmpl.Lookup(tmplName)
	if tmpl == nil {
		return nil, fmt.Errorf("template with name %s must be defined", tmplName)
	}

	buf := &bytes.Buffer{}
	if err := tmpl.Execute(buf, data); err != nil {
		return nil, fmt.Errorf("cannot execute template: %w", err)
	}

	return buf.Bytes(), nil
}
