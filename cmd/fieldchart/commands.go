package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/FocuswithJustin/FieldChart/core/cas"
	"github.com/FocuswithJustin/FieldChart/core/catalog"
	"github.com/FocuswithJustin/FieldChart/core/history"
	"github.com/FocuswithJustin/FieldChart/core/ingl"
	"github.com/FocuswithJustin/FieldChart/core/roster"
	"github.com/FocuswithJustin/FieldChart/core/script"
	"github.com/FocuswithJustin/FieldChart/core/show"
	"github.com/FocuswithJustin/FieldChart/internal/archive"
	"github.com/FocuswithJustin/FieldChart/internal/logging"
	"github.com/FocuswithJustin/FieldChart/internal/validation"
)

// InfoCmd summarizes a show.
type InfoCmd struct {
	Path string `arg:"" help:"Show file" type:"existingfile"`
	JSON bool   `help:"Output as JSON"`
}

type sheetInfo struct {
	Name    string `json:"name"`
	Beats   uint32 `json:"beats"`
	Images  int    `json:"images,omitempty"`
	Curves  int    `json:"curves,omitempty"`
	Current bool   `json:"current,omitempty"`
}

type showInfo struct {
	Path        string      `json:"path"`
	Version     string      `json:"version"`
	Description string      `json:"description,omitempty"`
	Marchers    int         `json:"marchers"`
	Sheets      []sheetInfo `json:"sheets"`
	Fingerprint string      `json:"fingerprint"`
}

func (c *InfoCmd) Run() error {
	data, err := archive.Source{Path: c.Path, MaxSize: cfg.MaxSize()}.Load()
	if err != nil {
		return err
	}
	v, err := show.ParseVersion(data)
	if err != nil {
		return err
	}
	s, err := show.Load(ingl.MemorySource{Data: data, Label: c.Path})
	if err != nil {
		return err
	}

	info := showInfo{
		Path:        c.Path,
		Version:     v.String(),
		Description: s.GetDescription(),
		Marchers:    s.GetNumPoints(),
		Fingerprint: s.Fingerprint(),
	}
	for i, sh := range s.GetSheets() {
		info.Sheets = append(info.Sheets, sheetInfo{
			Name:    sh.GetName(),
			Beats:   sh.GetBeats(),
			Images:  len(sh.GetBackgroundImages()),
			Curves:  len(sh.GetCurves()),
			Current: i == s.GetCurrentSheetNum(),
		})
	}
	if c.JSON {
		return printJSON(info)
	}

	fmt.Fprintf(stdout, "Show: %s\n", info.Path)
	fmt.Fprintf(stdout, "  Version:  %s\n", info.Version)
	if info.Description != "" {
		fmt.Fprintf(stdout, "  Description: %s\n", info.Description)
	}
	fmt.Fprintf(stdout, "  Marchers: %d\n", info.Marchers)
	fmt.Fprintf(stdout, "  Sheets:   %d\n", len(info.Sheets))
	for i, sh := range info.Sheets {
		mark := " "
		if sh.Current {
			mark = "*"
		}
		beats := fmt.Sprintf("%d beats", sh.Beats)
		if sh.Beats == 0 {
			beats = "skipped"
		}
		fmt.Fprintf(stdout, "   %s%3d  %-20s %s\n", mark, i, sh.Name, beats)
	}
	return nil
}

// DumpCmd lists the chunk structure of a show.
type DumpCmd struct {
	Path string `arg:"" help:"Show file" type:"existingfile"`
}

func (c *DumpCmd) Run() error {
	data, err := archive.Source{Path: c.Path, MaxSize: cfg.MaxSize()}.Load()
	if err != nil {
		return err
	}
	v, entries, err := ingl.Outline(data)
	fmt.Fprintf(stdout, "INGL version %s\n", v)
	for _, e := range entries {
		indent := strings.Repeat("  ", e.Depth)
		switch {
		case e.End:
			fmt.Fprintf(stdout, "%08x %sEND %s\n", e.Offset, indent, e.Tag)
		case e.Container:
			fmt.Fprintf(stdout, "%08x %s%s\n", e.Offset, indent, e.Tag)
		default:
			fmt.Fprintf(stdout, "%08x %s%s (%d bytes)\n", e.Offset, indent, e.Tag, e.Size)
		}
	}
	return err
}

// VerifyCmd checks that a show parses and re-serializes to an equal show.
type VerifyCmd struct {
	Path string `arg:"" help:"Show file" type:"existingfile"`
}

func (c *VerifyCmd) Run() error {
	data, err := archive.Source{Path: c.Path, MaxSize: cfg.MaxSize()}.Load()
	if err != nil {
		return err
	}
	s, err := show.Parse(data)
	if err != nil {
		return err
	}
	out := s.Serialize()
	again, err := show.Parse(out)
	if err != nil {
		return fmt.Errorf("re-serialized show does not parse: %w", err)
	}
	if !again.Equal(s) {
		return fmt.Errorf("%s: re-serialized show differs", c.Path)
	}
	if !bytes.Equal(again.Serialize(), out) {
		return fmt.Errorf("%s: serialization is not stable", c.Path)
	}
	if bytes.Equal(out, data) {
		fmt.Fprintf(stdout, "%s: OK (canonical)\n", c.Path)
	} else {
		fmt.Fprintf(stdout, "%s: OK (rewrites as %d bytes)\n", c.Path, len(out))
	}
	return nil
}

// ConvertCmd rewrites a show at the current version.
type ConvertCmd struct {
	Path        string `arg:"" help:"Show file" type:"existingfile"`
	Out         string `required:"" help:"Output show path" type:"path"`
	Compression string `help:"Output compression (none, xz, gzip); defaults to FIELDCHART_COMPRESSION"`
}

func (c *ConvertCmd) Run() error {
	comp, err := outputCompression(c.Compression, cfg.CompressionFormat())
	if err != nil {
		return err
	}
	s, err := loadShow(c.Path)
	if err != nil {
		return err
	}
	if err := saveShow(s, c.Out, comp); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Converted %s -> %s (%s)\n", c.Path, c.Out, comp)
	return nil
}

// FingerprintCmd prints a show's digests.
type FingerprintCmd struct {
	Path string `arg:"" help:"Show file" type:"existingfile"`
}

func (c *FingerprintCmd) Run() error {
	s, err := loadShow(c.Path)
	if err != nil {
		return err
	}
	data := s.Serialize()
	fmt.Fprintf(stdout, "blake3 %s\n", s.Fingerprint())
	fmt.Fprintf(stdout, "sha256 %s\n", cas.Hash(data))
	return nil
}

// NewCmd creates a show file.
type NewCmd struct {
	Out         string `arg:"" help:"Output show path" type:"path"`
	Roster      string `help:"XML roster to populate marchers from" type:"existingfile"`
	Description string `help:"Show description"`
	OriginX     int    `name:"origin-x" default:"-16" help:"Roster layout origin, steps"`
	OriginY     int    `name:"origin-y" default:"-8" help:"Roster layout origin, steps"`
	Compression string `help:"Output compression (none, xz, gzip)"`
	Force       bool   `help:"Overwrite an existing file"`
}

func (c *NewCmd) Run() error {
	if _, err := os.Stat(c.Out); err == nil && !c.Force {
		return fmt.Errorf("%s already exists (use --force)", c.Out)
	}
	comp, err := outputCompression(c.Compression, cfg.CompressionFormat())
	if err != nil {
		return err
	}
	s := show.New(show.DefaultShowMode())
	h := history.New()
	if c.Roster != "" {
		r, err := readRoster(c.Roster)
		if err != nil {
			return err
		}
		p, err := r.Apply(s, show.Steps(c.OriginX, c.OriginY))
		if err != nil {
			return err
		}
		h.Execute(s, p)
	}
	if c.Description != "" {
		p, err := s.CreateSetDescriptionCommand(c.Description)
		if err != nil {
			return err
		}
		h.Execute(s, p)
	}
	if err := saveShow(s, c.Out, comp); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Created %s: %d marchers\n", c.Out, s.GetNumPoints())
	return nil
}

// EditRunCmd applies an edit script.
type EditRunCmd struct {
	Path        string `arg:"" help:"Show file" type:"existingfile"`
	Script      string `arg:"" help:"Edit script" type:"existingfile"`
	Out         string `help:"Write the result here instead of in place" type:"path"`
	Compression string `help:"Output compression (none, xz, gzip); defaults to the input's"`
	Verify      bool   `help:"Check show fingerprints on undo and redo"`
	DryRun      bool   `name:"dry-run" help:"Run the script without saving"`
}

func (c *EditRunCmd) Run() error {
	src, err := os.ReadFile(c.Script)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	if len(src) > 0 {
		if _, err := validation.RequireFileType(bytes.NewReader(src), c.Script, validation.FileTypeText); err != nil {
			return err
		}
	}
	sc, err := script.Parse(string(src))
	if err != nil {
		return err
	}

	inComp, err := fileCompression(c.Path)
	if err != nil {
		return err
	}
	comp, err := outputCompression(c.Compression, inComp)
	if err != nil {
		return err
	}
	s, err := loadShow(c.Path)
	if err != nil {
		return err
	}

	var opts []history.Option
	if c.Verify {
		opts = append(opts, history.WithVerification())
	}
	h := history.New(opts...)
	res, err := script.Run(h, s, sc)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Script, err)
	}
	fmt.Fprintf(stdout, "Executed %d, no-op %d, undone %d, redone %d\n", res.Executed, res.NoOps, res.Undone, res.Redone)
	if c.DryRun || !h.IsModified() {
		return nil
	}
	out := c.Out
	if out == "" {
		out = c.Path
	}
	if err := saveShow(s, out, comp); err != nil {
		return err
	}
	h.MarkSaved()
	fmt.Fprintf(stdout, "Saved %s\n", out)
	return nil
}

// RosterImportCmd replaces a show's marchers with a roster.
type RosterImportCmd struct {
	Path    string `arg:"" help:"Show file" type:"existingfile"`
	Roster  string `arg:"" help:"XML roster" type:"existingfile"`
	Out     string `help:"Write the result here instead of in place" type:"path"`
	OriginX int    `name:"origin-x" default:"-16" help:"Layout origin for new marchers, steps"`
	OriginY int    `name:"origin-y" default:"-8" help:"Layout origin for new marchers, steps"`
}

func (c *RosterImportCmd) Run() error {
	r, err := readRoster(c.Roster)
	if err != nil {
		return err
	}
	comp, err := fileCompression(c.Path)
	if err != nil {
		return err
	}
	s, err := loadShow(c.Path)
	if err != nil {
		return err
	}
	p, err := r.Apply(s, show.Steps(c.OriginX, c.OriginY))
	if err != nil {
		return err
	}
	if !history.New().Execute(s, p) {
		fmt.Fprintln(stdout, "Roster already matches")
		return nil
	}
	out := c.Out
	if out == "" {
		out = c.Path
	}
	if err := saveShow(s, out, comp); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Imported %d marchers into %s\n", len(r.Marchers), out)
	return nil
}

func readRoster(path string) (*roster.Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}
	if _, err := validation.RequireFileType(bytes.NewReader(data), path, validation.FileTypeXML); err != nil {
		return nil, err
	}
	return roster.Parse(data)
}

// CatalogAddCmd registers shows.
type CatalogAddCmd struct {
	Paths   []string `arg:"" help:"Show files" type:"existingfile"`
	Catalog string   `help:"Catalog database; defaults to FIELDCHART_CATALOG" type:"path"`
}

func (c *CatalogAddCmd) Run() error {
	cat, err := openCatalog(c.Catalog)
	if err != nil {
		return err
	}
	defer cat.Close()
	for _, path := range c.Paths {
		s, err := loadShow(path)
		if err != nil {
			return err
		}
		e, err := cat.Register(opCtx, path, s)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s  %s\n", e.ID, e.Path)
	}
	return nil
}

// CatalogListCmd lists catalogued shows.
type CatalogListCmd struct {
	Catalog string `help:"Catalog database; defaults to FIELDCHART_CATALOG" type:"path"`
	JSON    bool   `help:"Output as JSON"`
}

func (c *CatalogListCmd) Run() error {
	cat, err := openCatalog(c.Catalog)
	if err != nil {
		return err
	}
	defer cat.Close()
	entries, err := cat.List(opCtx)
	if err != nil {
		return err
	}
	if c.JSON {
		if entries == nil {
			entries = []catalog.Entry{}
		}
		return printJSON(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(stdout, "No shows catalogued")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(stdout, "%s  %3d marchers  %3d sheets  %s\n", e.ID, e.Marchers, e.Sheets, e.Path)
	}
	return nil
}

// CatalogRemoveCmd removes a catalog entry.
type CatalogRemoveCmd struct {
	ID      string `arg:"" help:"Entry ID"`
	Catalog string `help:"Catalog database; defaults to FIELDCHART_CATALOG" type:"path"`
}

func (c *CatalogRemoveCmd) Run() error {
	cat, err := openCatalog(c.Catalog)
	if err != nil {
		return err
	}
	defer cat.Close()
	if err := cat.Remove(opCtx, c.ID); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Removed %s\n", c.ID)
	return nil
}

func openCatalog(flag string) (*catalog.Catalog, error) {
	path := flag
	if path == "" {
		path = cfg.Catalog
	}
	if err := validation.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("invalid catalog path: %w", err)
	}
	logging.InfoContext(opCtx, "opening catalog", "path", path)
	return catalog.Open(opCtx, path)
}

// SnapshotPutCmd stores a show snapshot.
type SnapshotPutCmd struct {
	Path  string `arg:"" help:"Show file" type:"existingfile"`
	Store string `help:"Snapshot directory; defaults to FIELDCHART_SNAPSHOTS" type:"path"`
}

func (c *SnapshotPutCmd) Run() error {
	store, err := openStore(c.Store)
	if err != nil {
		return err
	}
	s, err := loadShow(c.Path)
	if err != nil {
		return err
	}
	d, err := store.PutShow(s)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "sha256 %s\nblake3 %s\n", d.SHA256, d.BLAKE3)
	return nil
}

// SnapshotGetCmd writes a snapshot back out as a show file.
type SnapshotGetCmd struct {
	Digest      string `arg:"" help:"SHA-256 digest or BLAKE3 fingerprint"`
	Out         string `required:"" help:"Output show path" type:"path"`
	Store       string `help:"Snapshot directory; defaults to FIELDCHART_SNAPSHOTS" type:"path"`
	Compression string `help:"Output compression (none, xz, gzip); defaults to FIELDCHART_COMPRESSION"`
}

func (c *SnapshotGetCmd) Run() error {
	comp, err := outputCompression(c.Compression, cfg.CompressionFormat())
	if err != nil {
		return err
	}
	store, err := openStore(c.Store)
	if err != nil {
		return err
	}
	digest := strings.ToLower(strings.TrimSpace(c.Digest))
	var data []byte
	if store.Has(digest) {
		data, err = store.Get(digest)
	} else {
		data, err = store.GetByBlake3(digest)
	}
	if err != nil {
		return err
	}
	s, err := show.Parse(data)
	if err != nil {
		return err
	}
	if err := saveShow(s, c.Out, comp); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s\n", c.Out)
	return nil
}

func openStore(flag string) (*cas.Store, error) {
	root := flag
	if root == "" {
		root = cfg.Snapshots
	}
	if err := validation.ValidatePath(root); err != nil {
		return nil, fmt.Errorf("invalid snapshot directory: %w", err)
	}
	return cas.NewStore(root)
}
