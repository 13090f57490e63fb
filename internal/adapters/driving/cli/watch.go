package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docembed/internal/core/domain"
	"github.com/custodia-labs/docembed/internal/core/ports/driving"
	"github.com/custodia-labs/docembed/internal/logger"
)

// defaultDebounce is how long a file must stay quiet before it is ingested.
const defaultDebounce = time.Second

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest files dropped into a directory",
	Long: `Watch a directory and ingest every .txt or .docx file created or
rewritten in it. Files already present when watching starts are left alone.

A file is ingested once it has not changed for the debounce period. Files
whose chunks could not be stored get a <file>.embeddings.json export.
Stop with Ctrl+C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", defaultDebounce, "Quiet period before a changed file is ingested")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireIngest(); err != nil {
		return err
	}

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	key, err := resolveAPIKey(cmd)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for .txt and .docx files (Ctrl+C to stop)\n", dir)

	zone := newDropzone(ingestService, key, cmd.OutOrStdout(), watchDebounce)
	return zone.run(ctx, watcher.Events, watcher.Errors)
}

// dropzone ingests files that settle in a watched directory.
type dropzone struct {
	ingest   driving.IngestService
	apiKey   string
	out      io.Writer
	debounce time.Duration

	// pending maps a path to the time of its last event.
	pending map[string]time.Time
}

func newDropzone(ingest driving.IngestService, apiKey string, out io.Writer, debounce time.Duration) *dropzone {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &dropzone{
		ingest:   ingest,
		apiKey:   apiKey,
		out:      out,
		debounce: debounce,
		pending:  make(map[string]time.Time),
	}
}

// run processes events until the context is cancelled or a channel closes.
func (d *dropzone) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	ticker := time.NewTicker(max(d.debounce/2, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if path := d.handleFsEvent(event); path != "" {
				d.pending[path] = time.Now()
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)
		case now := <-ticker.C:
			for _, path := range d.settled(now) {
				if err := d.process(ctx, path); err != nil {
					if errors.Is(err, domain.ErrCancelled) {
						return nil
					}
					fmt.Fprintln(d.out, styles.Error.Render(filepath.Base(path)+": "+err.Error()))
				}
			}
		}
	}
}

// handleFsEvent returns the path to ingest for an event, or "" if the event
// is ignored.
func (d *dropzone) handleFsEvent(event fsnotify.Event) string {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return ""
	}

	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return ""
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".docx":
	default:
		return ""
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return ""
	}
	return event.Name
}

// settled removes and returns the pending paths quiet for the debounce period.
func (d *dropzone) settled(now time.Time) []string {
	var ready []string
	for path, last := range d.pending {
		if now.Sub(last) >= d.debounce {
			ready = append(ready, path)
			delete(d.pending, path)
		}
	}
	return ready
}

// process ingests one file and reports the outcome.
func (d *dropzone) process(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read: %w", err)
	}

	name := filepath.Base(path)
	fmt.Fprintf(d.out, "Ingesting %s\n", name)

	session, err := d.ingest.IngestFile(ctx,
		&domain.RawDocument{URI: path, Content: content},
		driving.IngestRequest{APIKey: d.apiKey, Options: d.ingest.DefaultOptions()},
	)
	if err != nil {
		if session != nil {
			d.export(path, session)
		}
		return describe(err)
	}

	if !session.Persisted {
		d.export(path, session)
		return describe(session.PersistErr)
	}

	fmt.Fprintf(d.out, "%s %s: document %s, %d chunks\n",
		styles.Success.Render("Stored"), name, session.DocumentID, len(session.Chunks))
	return nil
}

func (d *dropzone) export(path string, session *domain.IngestionSession) {
	target := path + exportSuffix
	if err := writeExport(target, session); err != nil {
		logger.Warn("watch: %v", err)
		return
	}
	fmt.Fprintf(d.out, "Embeddings saved to %s\n", target)
}
