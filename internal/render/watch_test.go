package render

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcher_InvalidatesTemplateAndRebuilds(t *testing.T) {
	r := newStubRenderer(t, map[string]string{"page.tmpl": "v1"})
	th, err := r.PrepareTheme()
	require.NoError(t, err)
	_, err = r.Template("templates/page.tmpl")
	require.NoError(t, err)
	require.Equal(t, 1, r.Templates().Len())

	var rebuilds atomic.Int32
	w := NewWatcher(r, func(context.Context) error {
		rebuilds.Add(1)
		return nil
	})
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	source := filepath.Join(th.BasePath(), "templates", "page.tmpl")
	require.Eventually(t, func() bool {
		_ = os.WriteFile(source, []byte("v2"), 0o644)
		return rebuilds.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)
	require.Zero(t, r.Templates().Len())

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_ExtraFileTriggersRebuild(t *testing.T) {
	r := newStubRenderer(t, nil)
	input := filepath.Join(t.TempDir(), "project.yaml")
	mustWrite(t, input, "name: a")

	var rebuilds atomic.Int32
	w := NewWatcher(r, func(context.Context) error {
		rebuilds.Add(1)
		return nil
	}, input)
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(input, []byte("name: b"), 0o644)
		return rebuilds.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestShouldIgnoreAndIsWithin(t *testing.T) {
	require.True(t, shouldIgnore("/a/.hidden"))
	require.True(t, shouldIgnore("/a/file.swp"))
	require.True(t, shouldIgnore("/a/file~"))
	require.False(t, shouldIgnore("/a/page.tmpl"))

	require.True(t, isWithin("/a/b", "/a/b/c.tmpl"))
	require.False(t, isWithin("/a/b", "/a/bc/d"))
	require.False(t, isWithin("/a/b", "/a"))
}
