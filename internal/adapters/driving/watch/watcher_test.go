package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/athena/internal/core/domain"
)

type mockIngestion struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (m *mockIngestion) Ingest(_ context.Context, _ []byte, name string) (*domain.IngestReport, error) {
	return &domain.IngestReport{SourceID: name}, nil
}

func (m *mockIngestion) IngestFile(_ context.Context, path string) (*domain.IngestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, path)
	if m.err != nil {
		return nil, &domain.IngestError{SourceID: filepath.Base(path), Err: m.err}
	}
	return &domain.IngestReport{SourceID: filepath.Base(path), ChunksAdded: 1}, nil
}

func (m *mockIngestion) SupportedExtensions() []string {
	return []string{".md", ".pdf", ".txt"}
}

func (m *mockIngestion) Shutdown(context.Context) error { return nil }

func (m *mockIngestion) ingested() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}

func TestWatcher_Supported(t *testing.T) {
	w := New(&mockIngestion{})

	tests := []struct {
		path string
		want bool
	}{
		{"notes.pdf", true},
		{"NOTES.PDF", true},
		{"/dir/readme.md", true},
		{"draft.txt", true},
		{"photo.png", false},
		{".hidden.txt", false},
		{"~lock.txt", false},
		{"backup.txt~", false},
		{"noext", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Supported(tt.path))
		})
	}
}

func TestWatcher_IngestExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("# beta"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.png"), []byte("png"), 0600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0700))

	ingestion := &mockIngestion{}
	var results []string
	w := New(ingestion, WithResultFunc(func(path string, report *domain.IngestReport, err error) {
		require.NoError(t, err)
		results = append(results, report.SourceID)
	}))

	err := w.IngestExisting(context.Background(), dir)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.md")}, ingestion.ingested())
	assert.ElementsMatch(t, []string{"a.txt", "b.md"}, results)
}

func TestWatcher_IngestExisting_JoinsErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("beta"), 0600))

	w := New(&mockIngestion{err: domain.ErrNoText})

	err := w.IngestExisting(context.Background(), dir)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoText)
	assert.Contains(t, err.Error(), "a.txt")
	assert.Contains(t, err.Error(), "b.txt")
}

func TestWatcher_IngestExisting_MissingDir(t *testing.T) {
	w := New(&mockIngestion{})

	err := w.IngestExisting(context.Background(), filepath.Join(t.TempDir(), "missing"))

	assert.Error(t, err)
}

func TestWatcher_Run_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	ingestion := &mockIngestion{}
	w := New(ingestion, WithDebounce(100*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, dir) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "notes.txt")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("version "+string(rune('a'+i))), 0600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.png"), []byte("png"), 0600))

	assert.Eventually(t, func() bool {
		return len(ingestion.ingested()) == 1
	}, 2*time.Second, 20*time.Millisecond)

	// No further ingestion once the burst has settled.
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, []string{path}, ingestion.ingested())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_Run_MissingDir(t *testing.T) {
	w := New(&mockIngestion{})

	err := w.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))

	assert.Error(t, err)
}
