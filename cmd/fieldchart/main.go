// Command fieldchart inspects and edits marching show files.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/FocuswithJustin/FieldChart/core/show"
	"github.com/FocuswithJustin/FieldChart/internal/archive"
	"github.com/FocuswithJustin/FieldChart/internal/config"
	"github.com/FocuswithJustin/FieldChart/internal/logging"
	"github.com/FocuswithJustin/FieldChart/internal/validation"
)

const version = "0.4.0"

// CLI defines the command-line interface for fieldchart.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error); overrides FIELDCHART_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log format (text, json); overrides FIELDCHART_LOG_FORMAT"`

	// Command groups (noun-first organization)
	Show     ShowGroup     `cmd:"" help:"Show file operations (info, dump, verify, convert, fingerprint, new)"`
	Edit     EditGroup     `cmd:"" help:"Scripted editing"`
	Roster   RosterGroup   `cmd:"" help:"Marcher roster import"`
	Catalog  CatalogGroup  `cmd:"" help:"Show catalog"`
	Snapshot SnapshotGroup `cmd:"" help:"Content-addressed show snapshots"`
	Version  VersionCmd    `cmd:"" help:"Print version information"`
}

// ShowGroup contains show file operations.
type ShowGroup struct {
	Info        InfoCmd        `cmd:"" help:"Summarize a show file"`
	Dump        DumpCmd        `cmd:"" help:"List the chunks of a show file"`
	Verify      VerifyCmd      `cmd:"" help:"Check that a show file round-trips"`
	Convert     ConvertCmd     `cmd:"" help:"Rewrite a show file in the current format"`
	Fingerprint FingerprintCmd `cmd:"" help:"Print the digests of a show"`
	New         NewCmd         `cmd:"" help:"Create an empty show file"`
}

// EditGroup contains editing operations.
type EditGroup struct {
	Run EditRunCmd `cmd:"" help:"Apply an edit script to a show"`
}

// RosterGroup contains roster operations.
type RosterGroup struct {
	Import RosterImportCmd `cmd:"" help:"Set a show's marchers from an XML roster"`
}

// CatalogGroup contains catalog operations.
type CatalogGroup struct {
	Add    CatalogAddCmd    `cmd:"" help:"Register show files in the catalog"`
	List   CatalogListCmd   `cmd:"" help:"List catalogued shows"`
	Remove CatalogRemoveCmd `cmd:"" help:"Remove a catalog entry"`
}

// SnapshotGroup contains snapshot store operations.
type SnapshotGroup struct {
	Put SnapshotPutCmd `cmd:"" help:"Store a snapshot of a show"`
	Get SnapshotGetCmd `cmd:"" help:"Write a stored snapshot to a file"`
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "fieldchart version %s\n", version)
	return nil
}

var (
	// stdout receives command output; logs go to stderr.
	stdout io.Writer = os.Stdout

	cfg config.Config

	// opCtx carries the operation ID of this invocation.
	opCtx = context.Background()
)

// setup loads configuration, applies flag overrides, and starts logging.
func setup() error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	if CLI.LogLevel != "" {
		c.LogLevel = CLI.LogLevel
	}
	if CLI.LogFormat != "" {
		c.LogFormat = CLI.LogFormat
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	logging.InitLogger(cfg.Logging())
	opCtx = logging.WithOperationID(context.Background(), uuid.NewString())
	return nil
}

// Helper functions

func loadShow(path string) (*show.Show, error) {
	if err := validation.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("invalid show path: %w", err)
	}
	return show.Load(archive.Source{Path: path, MaxSize: cfg.MaxSize()})
}

func saveShow(s *show.Show, path string, comp archive.Compression) error {
	if err := validation.ValidateOutputPath(path); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	return s.Save(archive.Sink{Path: path, Compression: comp})
}

// fileCompression reports how an existing show file is wrapped.
func fileCompression(path string) (archive.Compression, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	ft, err := validation.RequireFileType(f, path, validation.FileTypeShow, validation.FileTypeXZ, validation.FileTypeGzip)
	if err != nil {
		return "", err
	}
	switch ft {
	case validation.FileTypeXZ:
		return archive.CompressionXZ, nil
	case validation.FileTypeGzip:
		return archive.CompressionGzip, nil
	}
	return archive.CompressionNone, nil
}

// outputCompression picks the flag value, then fallback.
func outputCompression(flag string, fallback archive.Compression) (archive.Compression, error) {
	if flag == "" {
		return fallback, nil
	}
	return archive.ParseCompression(flag)
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("fieldchart"),
		kong.Description("FieldChart - marching show file tools"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	ctx.FatalIfErrorf(setup())
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
