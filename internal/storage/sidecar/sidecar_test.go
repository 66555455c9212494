package sidecar

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jgivc/rsrequest/internal/common"
	"github.com/jgivc/rsrequest/internal/config"
	"github.com/jgivc/rsrequest/internal/entity"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSidecarAdapter struct {
	mock.Mock
}

func (m *MockSidecarAdapter) ToRequest(path string) (*entity.Request, error) {
	args := m.Called(path)

	var r *entity.Request
	if rr, ok := args.Get(0).(*entity.Request); ok {
		r = rr
	}

	return r, args.Error(1)
}

func newConfig() *config.SidecarConfig {
	appCFG := &config.Config{}
	appCFG.SetDefaults()
	appCFG.Sidecar.WorkDir = "/work"
	appCFG.Sidecar.Workers = 2

	return &appCFG.Sidecar
}

func TestScan(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	testCases := []struct {
		name          string
		files         []string
		failing       []string
		expectedPaths []string
	}{
		{
			name: "empty work dir",
		},
		{
			name:          "only sidecars are read",
			files:         []string{"/work/b.md", "/work/a.MD", "/work/a.mkv", "/work/notes.txt"},
			expectedPaths: []string{"/work/a.MD", "/work/b.md"},
		},
		{
			name:          "nested dirs, hidden dirs skipped",
			files:         []string{"/work/show/s01.md", "/work/.trash/old.md", "/work/top.md"},
			expectedPaths: []string{"/work/show/s01.md", "/work/top.md"},
		},
		{
			name:          "broken sidecar is skipped",
			files:         []string{"/work/good.md", "/work/bad.md"},
			failing:       []string{"/work/bad.md"},
			expectedPaths: []string{"/work/good.md"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, fs.MkdirAll("/work", 0o755))

			m := new(MockSidecarAdapter)
			for _, f := range tc.files {
				require.NoError(t, afero.WriteFile(fs, f, []byte("x"), 0o644))
			}
			for _, f := range tc.failing {
				m.On("ToRequest", f).Return(nil, errors.New("broken"))
			}
			for _, f := range tc.expectedPaths {
				m.On("ToRequest", f).Return(entity.NewRequest("https://example.com"+f), nil)
			}

			s := NewSidecarStorageWithFS(fs, m, newConfig(), log)
			items, err := s.Scan(context.Background())
			require.NoError(t, err)

			paths := make([]string, 0, len(items))
			for _, item := range items {
				paths = append(paths, item.Path)
				require.Equal(t, "https://example.com"+item.Path, item.Request.URL)
			}

			if len(tc.expectedPaths) == 0 {
				require.Empty(t, paths)
			} else {
				require.Equal(t, tc.expectedPaths, paths)
			}

			m.AssertExpectations(t)
		})
	}
}

func TestScanMissingWorkDir(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := NewSidecarStorageWithFS(afero.NewMemMapFs(), new(MockSidecarAdapter), newConfig(), log)
	_, err := s.Scan(context.Background())
	require.Error(t, err)
}

func TestScanCanceled(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/a.md", []byte("x"), 0o644))

	m := new(MockSidecarAdapter)
	m.On("ToRequest", "/work/a.md").Return(entity.NewRequest("u"), nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSidecarStorageWithFS(fs, m, newConfig(), log)
	_, err := s.Scan(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestScanAlreadyRunning(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := NewSidecarStorageWithFS(afero.NewMemMapFs(), new(MockSidecarAdapter), newConfig(), log)
	s.running.Store(true)

	_, err := s.Scan(context.Background())
	require.ErrorIs(t, err, common.ErrIndexingProcessHasAlreadyStarted)
}
