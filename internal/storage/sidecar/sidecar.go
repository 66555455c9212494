package sidecar

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jgivc/rsrequest/internal/common"
	"github.com/jgivc/rsrequest/internal/config"
	"github.com/jgivc/rsrequest/internal/entity"
	"github.com/spf13/afero"
)

const (
	maxFiles = 1000
)

var errLimitReached = errors.New("sidecar limit reached")

type SidecarAdapter interface {
	ToRequest(path string) (*entity.Request, error)
}

// Item is a request read from a sidecar document.
type Item struct {
	Path    string
	Request *entity.Request
}

type sidecarStorage struct {
	running atomic.Bool
	fs      afero.Fs
	adapter SidecarAdapter
	cfg     *config.SidecarConfig
	log     *slog.Logger
}

func NewSidecarStorage(adapter SidecarAdapter, cfg *config.SidecarConfig, log *slog.Logger) *sidecarStorage {
	return NewSidecarStorageWithFS(afero.NewOsFs(), adapter, cfg, log)
}

func NewSidecarStorageWithFS(fs afero.Fs, adapter SidecarAdapter, cfg *config.SidecarConfig, log *slog.Logger) *sidecarStorage {
	return &sidecarStorage{
		fs:      fs,
		adapter: adapter,
		cfg:     cfg,
		log:     log.With(slog.String("item", "SidecarStorage")),
	}
}

/*
Scan walks the work dir and reads every sidecar document with a pool of
workers. Documents that cannot be read are logged and skipped. Items are
sorted by path.
*/
func (s *sidecarStorage) Scan(ctx context.Context) ([]*Item, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, common.ErrIndexingProcessHasAlreadyStarted
	}
	defer s.running.Store(false)

	paths, err := s.collect()
	if err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		return []*Item{}, nil
	}

	in := make(chan string, len(paths))
	out := make(chan *Item, len(paths))

	for _, path := range paths {
		in <- path
	}
	close(in)

	workers := s.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for n := 0; n < workers; n++ {
		go s.worker(ctx, n, in, out, &wg)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	items := make([]*Item, 0, len(paths))
	for item := range out {
		s.log.Debug("Found sidecar", slog.String("path", item.Path), slog.String("status", item.Request.Status.String()))
		items = append(items, item)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Path < items[j].Path
	})

	return items, nil
}

func (s *sidecarStorage) collect() ([]string, error) {
	var paths []string

	err := afero.Walk(s.fs, s.cfg.WorkDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != s.cfg.WorkDir && strings.HasPrefix(info.Name(), ".") {
				return fs.SkipDir
			}

			return nil
		}

		if !strings.EqualFold(extension(info.Name()), s.cfg.Ext) {
			return nil
		}

		if len(paths) >= maxFiles {
			return errLimitReached
		}

		paths = append(paths, path)

		return nil
	})
	if errors.Is(err, errLimitReached) {
		s.log.Warn("Too many sidecars, the rest are skipped", slog.Int("limit", maxFiles))
	} else if err != nil {
		return nil, fmt.Errorf("cannot walk %s: %w", s.cfg.WorkDir, err)
	}

	return paths, nil
}

func (s *sidecarStorage) worker(ctx context.Context, n int, in chan string, out chan *Item, wg *sync.WaitGroup) {
	defer wg.Done()

	log := s.log.With(slog.Int("worker_id", n))
	log.Debug("Started")

	for path := range in {
		if ctx.Err() != nil {
			log.Info("Interrupted")

			return
		}

		r, err := s.adapter.ToRequest(path)
		if err != nil {
			log.Error("Cannot read sidecar", slog.String("path", path), slog.Any("error", err))

			continue
		}

		select {
		case <-ctx.Done():
			log.Info("Interrupted")

			return
		case out <- &Item{Path: path, Request: r}:
		}
	}

	log.Debug("Done")
}

func extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}

	return name[i:]
}
