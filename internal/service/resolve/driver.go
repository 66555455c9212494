package resolve

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jgivc/rsrequest/internal/common"
	"github.com/jgivc/rsrequest/internal/config"
	"github.com/jgivc/rsrequest/internal/entity"
)

// Result is the outcome of a resolution run.
type Result struct {
	RunID   string
	Request *entity.Request
	Plugin  string // Plugin that produced Request, empty if none claimed it
	Steps   int
	Savable bool
}

type Driver struct {
	registry *Registry
	selector FileSelector
	maxSteps int
	log      *slog.Logger
}

// NewDriver returns a Driver. selector may be nil, file selection then stops
// the run with ErrFileSelectionRequired.
func NewDriver(registry *Registry, selector FileSelector, cfg *config.ResolveConfig, log *slog.Logger) *Driver {
	return &Driver{
		registry: registry,
		selector: selector,
		maxSteps: cfg.MaxSteps,
		log:      log.With(slog.String("item", "ResolveDriver")),
	}
}

/*
Run drives the request of env through the plugins until it reaches a final
status or needParsing:

  - unprocessed: offered to every plugin in registration order until one claims it.
  - intermediate: offered to the plugins other than the one that returned it.
  - requireAdd: Add is called on the owning plugin, then it resolves again.
  - needFileSelection: the selector picks a file, the owning plugin resolves again.

Transitions outside the resolution protocol are logged, not rejected. env is
never modified. On error the returned Result holds the last known request.
*/
func (d *Driver) Run(ctx context.Context, env *entity.RequestWithCredential) (*Result, error) {
	res := &Result{
		RunID:   uuid.NewString(),
		Request: env.Request.Clone(),
		Savable: env.Savable,
	}

	log := d.log.With(slog.String("run_id", res.RunID), slog.String("url", env.Request.URL))
	log.Info("Resolve started", slog.String("status", res.Request.Status.String()))

	var owner Plugin

	for {
		r := res.Request

		if r.Status.Final() || r.Status == entity.StatusNeedParsing {
			log.Info("Resolve done",
				slog.String("status", r.Status.String()),
				slog.String("plugin", res.Plugin),
				slog.Int("steps", res.Steps),
			)

			return res, nil
		}

		if err := ctx.Err(); err != nil {
			return res, err
		}

		if res.Steps >= d.maxSteps {
			log.Error("Resolve aborted", slog.Int("steps", res.Steps), slog.String("status", r.Status.String()))

			return res, fmt.Errorf("%w: %d", common.ErrTooManySteps, d.maxSteps)
		}

		var (
			next *entity.Request
			p    Plugin
			err  error
		)

		switch {
		case r.Status == entity.StatusIntermediate:
			next, p, err = d.dispatch(ctx, log, env, r, res.Plugin)
		case owner == nil:
			// The request came in mid protocol, find who owns it.
			next, p, err = d.dispatch(ctx, log, env, r, "")
		case r.Status == entity.StatusRequireAdd:
			p = owner
			next, err = d.add(ctx, log, owner, env, r)
		case r.Status == entity.StatusNeedFileSelection:
			p = owner
			next, err = d.selectFile(ctx, log, owner, env, r)
		default:
			next, p, err = d.dispatch(ctx, log, env, r, "")
		}

		if err != nil {
			return res, err
		}

		res.Steps++

		owner = p
		res.Plugin = ""
		if p != nil {
			res.Plugin = p.Name()
		}

		d.transition(log, res.Plugin, r, next)
		res.Request = next
	}
}

// dispatch offers r to each plugin except skip. Nobody claiming it yields
// needParsing.
func (d *Driver) dispatch(ctx context.Context, log *slog.Logger, env *entity.RequestWithCredential, r *entity.Request, skip string) (*entity.Request, Plugin, error) {
	for _, p := range d.registry.Plugins() {
		if skip != "" && normalizeName(p.Name()) == normalizeName(skip) {
			continue
		}

		next, err := d.call(ctx, p, env, r)
		if err != nil {
			return nil, nil, err
		}

		if next.Status == entity.StatusUnprocessed || next.Status == entity.StatusNeedParsing {
			log.Debug("Plugin declined", slog.String("plugin", p.Name()))

			continue
		}

		log.Debug("Plugin claimed", slog.String("plugin", p.Name()), slog.String("status", next.Status.String()))

		return next, p, nil
	}

	log.Info("No plugin claimed the request")

	next := r.Clone()
	next.Status = entity.StatusNeedParsing

	return next, nil, nil
}

func (d *Driver) add(ctx context.Context, log *slog.Logger, p Plugin, env *entity.RequestWithCredential, r *entity.Request) (*entity.Request, error) {
	if err := p.Add(ctx, envelope(env, r)); err != nil {
		log.Error("Cannot add request", slog.String("plugin", p.Name()), slog.Any("error", err))

		return nil, fmt.Errorf("plugin %s: cannot add request: %w", p.Name(), err)
	}

	log.Debug("Request added", slog.String("plugin", p.Name()))

	return d.call(ctx, p, env, r)
}

func (d *Driver) selectFile(ctx context.Context, log *slog.Logger, p Plugin, env *entity.RequestWithCredential, r *entity.Request) (*entity.Request, error) {
	if d.selector == nil {
		return nil, common.ErrFileSelectionRequired
	}

	name, err := d.selector.SelectFile(ctx, r.Clone())
	if err != nil {
		return nil, fmt.Errorf("cannot select file: %w", err)
	}

	selected := r.Clone()
	if err := selected.SelectFile(name); err != nil {
		return nil, err
	}

	log.Debug("File selected", slog.String("plugin", p.Name()), slog.String("file", name))

	return d.call(ctx, p, env, selected)
}

func (d *Driver) call(ctx context.Context, p Plugin, env *entity.RequestWithCredential, r *entity.Request) (*entity.Request, error) {
	next, err := p.Resolve(ctx, envelope(env, r))
	if err != nil {
		return nil, fmt.Errorf("plugin %s: cannot resolve: %w", p.Name(), err)
	}

	if next == nil {
		return nil, fmt.Errorf("plugin %s: no request returned", p.Name())
	}

	return next, nil
}

func (d *Driver) transition(log *slog.Logger, plugin string, prev, next *entity.Request) {
	log = log.With(
		slog.String("plugin", plugin),
		slog.String("from", prev.Status.String()),
		slog.String("to", next.Status.String()),
	)

	if !prev.Status.IntendedTransition(next.Status) {
		log.Warn("Protocol violation")
	} else {
		log.Debug("Transition")
	}

	if err := next.Validate(); err != nil {
		log.Warn("Invalid request returned", slog.Any("error", err))
	}
}

func envelope(env *entity.RequestWithCredential, r *entity.Request) *entity.RequestWithCredential {
	return &entity.RequestWithCredential{
		Request:    *r.Clone(),
		Credential: env.Credential,
		Savable:    env.Savable,
	}
}
