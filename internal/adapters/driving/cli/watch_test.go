package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docembed/internal/core/domain"
)

func TestWatchCmd_Use(t *testing.T) {
	assert.Equal(t, "watch [dir]", watchCmd.Use)
}

func TestWatchCmd_HasDebounceFlag(t *testing.T) {
	flag := watchCmd.Flags().Lookup("debounce")
	require.NotNil(t, flag)
	assert.Equal(t, "1s", flag.DefValue)
}

func TestWatchCmd_RejectsFile(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"watch", writeTempFile(t, "a.txt", "x")})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestDropzone_HandleFsEvent(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		dir       bool
		create    bool
		operation fsnotify.Op
		want      bool
	}{
		{name: "create txt", file: "a.txt", create: true, operation: fsnotify.Create, want: true},
		{name: "write docx", file: "b.docx", create: true, operation: fsnotify.Write, want: true},
		{name: "upper-case extension", file: "C.TXT", create: true, operation: fsnotify.Create, want: true},
		{name: "write and chmod", file: "a.txt", create: true, operation: fsnotify.Write | fsnotify.Chmod, want: true},
		{name: "chmod only", file: "a.txt", create: true, operation: fsnotify.Chmod},
		{name: "remove", file: "a.txt", operation: fsnotify.Remove},
		{name: "rename", file: "a.txt", operation: fsnotify.Rename},
		{name: "unsupported extension", file: "a.pdf", create: true, operation: fsnotify.Create},
		{name: "export file", file: "a.txt.embeddings.json", create: true, operation: fsnotify.Create},
		{name: "hidden file", file: ".a.txt", create: true, operation: fsnotify.Create},
		{name: "directory", file: "folder.txt", dir: true, operation: fsnotify.Create},
		{name: "vanished file", file: "gone.txt", operation: fsnotify.Create},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			switch {
			case tt.dir:
				require.NoError(t, os.Mkdir(path, 0o755))
			case tt.create:
				require.NoError(t, os.WriteFile(path, []byte("content"), 0o600))
			}

			zone := newDropzone(&mockIngestService{}, "key", new(bytes.Buffer), time.Second)
			got := zone.handleFsEvent(fsnotify.Event{Name: path, Op: tt.operation})

			if tt.want {
				assert.Equal(t, path, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestDropzone_Settled(t *testing.T) {
	zone := newDropzone(&mockIngestService{}, "key", new(bytes.Buffer), time.Second)
	now := time.Now()
	zone.pending["old.txt"] = now.Add(-2 * time.Second)
	zone.pending["new.txt"] = now.Add(-100 * time.Millisecond)

	ready := zone.settled(now)

	assert.Equal(t, []string{"old.txt"}, ready)
	assert.Contains(t, zone.pending, "new.txt")
	assert.NotContains(t, zone.pending, "old.txt")
}

func TestNewDropzone_DefaultDebounce(t *testing.T) {
	zone := newDropzone(&mockIngestService{}, "key", new(bytes.Buffer), 0)
	assert.Equal(t, defaultDebounce, zone.debounce)
}

func TestDropzone_Process(t *testing.T) {
	t.Run("stored", func(t *testing.T) {
		ingest := &mockIngestService{session: testSession()}
		out := new(bytes.Buffer)
		zone := newDropzone(ingest, "zone-key", out, time.Second)
		path := writeTempFile(t, "drop.txt", "hello")

		require.NoError(t, zone.process(context.Background(), path))

		assert.Equal(t, "zone-key", ingest.lastReq.APIKey)
		assert.Equal(t, path, ingest.lastRaw.URI)
		assert.Contains(t, out.String(), "drop.txt: document 42, 2 chunks")
		assert.NoFileExists(t, path+exportSuffix)
	})

	t.Run("chunks not stored", func(t *testing.T) {
		session := testSession()
		session.Persisted = false
		session.PersistErr = &domain.PersistError{Stage: domain.PersistStageChunks, Err: errors.New("timeout")}
		zone := newDropzone(&mockIngestService{session: session}, "key", new(bytes.Buffer), time.Second)
		path := writeTempFile(t, "drop.txt", "hello")

		err := zone.process(context.Background(), path)

		assert.ErrorIs(t, err, domain.ErrChunkPersistFailed)
		assert.FileExists(t, path+exportSuffix)
	})

	t.Run("embedding failed", func(t *testing.T) {
		ingest := &mockIngestService{err: &domain.EmbeddingError{ChunkIndex: 0, Err: errors.New("boom")}}
		zone := newDropzone(ingest, "key", new(bytes.Buffer), time.Second)
		path := writeTempFile(t, "drop.txt", "hello")

		err := zone.process(context.Background(), path)

		assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)
		assert.NoFileExists(t, path+exportSuffix)
	})
}

func TestDropzone_Run(t *testing.T) {
	ingest := &mockIngestService{session: testSession()}
	out := new(bytes.Buffer)
	zone := newDropzone(ingest, "key", out, 20*time.Millisecond)
	path := writeTempFile(t, "drop.txt", "hello")

	events := make(chan fsnotify.Event, 4)
	errs := make(chan error, 1)
	events <- fsnotify.Event{Name: path, Op: fsnotify.Create}
	events <- fsnotify.Event{Name: path, Op: fsnotify.Write}
	errs <- errors.New("watch overflow")

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- zone.run(ctx, events, errs) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("dropzone did not stop")
	}

	assert.Equal(t, 1, ingest.calls)
	assert.Contains(t, out.String(), "Stored")
}

func TestDropzone_RunStopsWhenEventsClose(t *testing.T) {
	zone := newDropzone(&mockIngestService{}, "key", new(bytes.Buffer), time.Second)
	events := make(chan fsnotify.Event)
	close(events)

	err := zone.run(context.Background(), events, make(chan error))

	assert.NoError(t, err)
}
