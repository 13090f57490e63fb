package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docembed/internal/core/domain"
	"github.com/custodia-labs/docembed/internal/core/ports/driving"
)

// defaultUploadFile is ingested when no file argument is given.
const defaultUploadFile = "./sample_thai.txt"

// exportSuffix is appended to the input path for the JSON fallback export.
const exportSuffix = ".embeddings.json"

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Chunk, embed and store a document",
	Long: `Read a .txt or .docx file, split it into overlapping chunks, embed every
chunk in order and store the document with its chunk vectors.

The file defaults to ./sample_thai.txt. Chunk size, overlap and the delay
between embedding requests come from settings.

If the chunks cannot be stored, the embeddings are written next to the input
as <file>.embeddings.json and the command exits with an error.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

// promptAPIKey asks for the embedding key without echo. Replaced in tests.
var promptAPIKey = func(cmd *cobra.Command) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("%w: set %s", domain.ErrInvalidInput, domain.EnvEmbeddingAPIKey)
	}
	cmd.Print("Embedding API key: ")
	key := readPassword()
	cmd.Println()
	return key, nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	if err := requireIngest(); err != nil {
		return err
	}

	path := defaultUploadFile
	if len(args) > 0 {
		path = args[0]
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	key, err := resolveAPIKey(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styles.Title.Render("Uploading "+path))

	session, err := ingestService.IngestFile(ctx,
		&domain.RawDocument{URI: path, Content: content},
		driving.IngestRequest{
			APIKey:   key,
			Options:  ingestService.DefaultOptions(),
			Progress: progressPrinter(out),
		},
	)
	if err != nil {
		if session != nil {
			exportSession(cmd, path, session)
		}
		return describe(err)
	}

	printSummary(out, session)
	if !session.Persisted {
		exportSession(cmd, path, session)
		return describe(session.PersistErr)
	}
	return nil
}

// resolveAPIKey reads the key from settings, prompting when it is missing.
func resolveAPIKey(cmd *cobra.Command) (string, error) {
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return "", fmt.Errorf("failed to get settings: %w", err)
		}
		if settings.Embedding.APIKey != "" {
			return settings.Embedding.APIKey, nil
		}
	}

	key, err := promptAPIKey(cmd)
	if err != nil {
		return "", err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: no embedding API key", domain.ErrInvalidInput)
	}
	return key, nil
}

func progressPrinter(out io.Writer) driving.ProgressFunc {
	return func(ev driving.ProgressEvent) {
		switch ev.Stage {
		case driving.StageChunking:
			fmt.Fprintln(out, "Chunking...")
		case driving.StageEmbedding:
			if ev.Current == 1 {
				fmt.Fprintf(out, "Split into %d chunks\n", ev.Total)
			}
			fmt.Fprintf(out, "Embedding chunk %d/%d... ", ev.Current, ev.Total)
		case driving.StageEmbedded:
			fmt.Fprintf(out, "dims=%d\n", ev.Dimensions)
		case driving.StageSaving:
			fmt.Fprintln(out, "Saving document and chunks...")
		case driving.StageDone:
		}
	}
}

func printSummary(out io.Writer, session *domain.IngestionSession) {
	fmt.Fprintln(out)
	if session.Persisted {
		fmt.Fprintln(out, styles.Success.Render("Stored document "+session.DocumentID))
	} else {
		fmt.Fprintln(out, styles.Warning.Render("Document was not fully stored"))
	}
	fmt.Fprintf(out, "  %s %s\n", styles.Label.Render("Title:"), session.Document.Title)
	fmt.Fprintf(out, "  %s %d\n", styles.Label.Render("Chunks:"), len(session.Chunks))
	fmt.Fprintf(out, "  %s %d\n", styles.Label.Render("Dimensions:"), session.Dimensions())
	fmt.Fprintf(out, "  %s %s\n", styles.Label.Render("Model:"), session.Model)
}

// exportSession writes the session as JSON next to the input file.
func exportSession(cmd *cobra.Command, path string, session *domain.IngestionSession) {
	target := path + exportSuffix
	if err := writeExport(target, session); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), styles.Error.Render("Could not write export: "+err.Error()))
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Embeddings saved to %s\n", target)
}

func writeExport(target string, session *domain.IngestionSession) error {
	data, err := json.MarshalIndent(session.Export(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// describedError renders an ingestion error for the terminal while keeping
// the underlying error available to errors.Is and errors.As.
type describedError struct {
	err error
}

func (e *describedError) Error() string { return domain.Describe(e.err) }

func (e *describedError) Unwrap() error { return e.err }

func describe(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) && !errors.Is(err, domain.ErrCancelled) {
		err = fmt.Errorf("%w: %w", domain.ErrCancelled, err)
	}
	return &describedError{err: err}
}
