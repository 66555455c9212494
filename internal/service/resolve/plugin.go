package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/jgivc/rsrequest/internal/common"
	"github.com/jgivc/rsrequest/internal/entity"
)

/*
Plugin resolves requests of the links it recognizes. Resolve returns the
updated request; a request returned as unprocessed or needParsing was not
claimed. Add registers the link on the remote service when Resolve asked
for it with requireAdd.
*/
type Plugin interface {
	Name() string
	Resolve(ctx context.Context, env *entity.RequestWithCredential) (*entity.Request, error)
	Add(ctx context.Context, env *entity.RequestWithCredential) error
}

// FileSelector picks one of the file candidates of a request.
type FileSelector interface {
	SelectFile(ctx context.Context, r *entity.Request) (string, error)
}

type FileSelectorFunc func(ctx context.Context, r *entity.Request) (string, error)

func (f FileSelectorFunc) SelectFile(ctx context.Context, r *entity.Request) (string, error) {
	return f(ctx, r)
}

// Registry keeps plugins by name in registration order.
type Registry struct {
	byName  map[string]Plugin
	plugins []Plugin
}

func NewRegistry(plugins ...Plugin) (*Registry, error) {
	r := &Registry{byName: make(map[string]Plugin, len(plugins))}

	for _, p := range plugins {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *Registry) Register(p Plugin) error {
	if p == nil {
		return fmt.Errorf("plugin must not be nil")
	}

	name := normalizeName(p.Name())
	if name == "" {
		return fmt.Errorf("plugin name must not be empty")
	}

	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("duplicate plugin: %q", name)
	}

	r.byName[name] = p
	r.plugins = append(r.plugins, p)

	return nil
}

func (r *Registry) Get(name string) (Plugin, error) {
	p, ok := r.byName[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrPluginNotFound, name)
	}

	return p, nil
}

func (r *Registry) Plugins() []Plugin {
	return append([]Plugin(nil), r.plugins...)
}

func (r *Registry) Len() int {
	return len(r.plugins)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
