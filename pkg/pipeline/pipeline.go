// Package pipeline provides the parse → layout → render pipeline shared by
// the CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Build the block tree from the program text
//  2. Layout: Draw the sheet (title, pseudocode panel, structured paper)
//     on an in-memory grid, recording every draw operation
//  3. Render: Turn the grid, the operations or the tree into the requested
//     formats (XLSX, SVG, text, JSON, Graphviz)
//
// Rendered artifacts are cached by a hash of the inputs, so re-rendering an
// unchanged program only costs a cache lookup.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Title:   "Esercizio",
//	    Author:  "Mario Rossi",
//	    Code:    code,
//	    Formats: []string{pipeline.FormatXLSX},
//	})
//	if err != nil {
//	    return err
//	}
//	xlsx := result.Artifacts[pipeline.FormatXLSX]
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/cartastrutturata/pkg/cache"
	"github.com/matzehuels/cartastrutturata/pkg/errors"
	"github.com/matzehuels/cartastrutturata/pkg/pseudocode"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultMaxCodeBytes bounds the size of a program.
	DefaultMaxCodeBytes = 1 << 20

	// DefaultTTL is how long rendered artifacts stay cached.
	DefaultTTL = 7 * 24 * time.Hour

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatXLSX    = "xlsx"     // structured-paper workbook
	FormatSVG     = "svg"      // structured-paper drawing
	FormatPDF     = "pdf"      // structured-paper drawing via rsvg-convert
	FormatPNG     = "png"      // structured-paper drawing via rsvg-convert
	FormatText    = "txt"      // structured-paper character grid
	FormatJSON    = "json"     // recorded draw operations
	FormatTree    = "tree"     // block tree as JSON
	FormatDOT     = "dot"      // block tree as Graphviz source
	FormatTreeSVG = "tree-svg" // block tree drawn by Graphviz
	FormatTreePDF = "tree-pdf"
	FormatTreePNG = "tree-png"
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = FormatXLSX

// Formats lists the supported formats in display order.
var Formats = []string{
	FormatXLSX, FormatSVG, FormatPDF, FormatPNG, FormatText,
	FormatJSON, FormatTree, FormatDOT, FormatTreeSVG, FormatTreePDF, FormatTreePNG,
}

// ValidFormats is the set of supported output formats.
var ValidFormats = func() map[string]bool {
	m := make(map[string]bool, len(Formats))
	for _, f := range Formats {
		m[f] = true
	}
	return m
}()

// ContentTypes maps formats to MIME types.
var ContentTypes = map[string]string{
	FormatXLSX:    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatSVG:     "image/svg+xml",
	FormatPDF:     "application/pdf",
	FormatPNG:     "image/png",
	FormatText:    "text/plain; charset=utf-8",
	FormatJSON:    "application/json",
	FormatTree:    "application/json",
	FormatDOT:     "text/vnd.graphviz",
	FormatTreeSVG: "image/svg+xml",
	FormatTreePDF: "application/pdf",
	FormatTreePNG: "image/png",
}

// Extension returns the file name suffix used when saving format, without
// the leading dot.
func Extension(format string) string {
	switch format {
	case FormatTree:
		return "tree.json"
	case FormatTreeSVG, FormatTreePDF, FormatTreePNG:
		return "tree." + strings.TrimPrefix(format, "tree-")
	default:
		return format
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
	Code   string `json:"code"`

	// Parse options
	Strict bool `json:"strict,omitempty"`

	// Layout options
	ActionLabel string `json:"action_label,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	MaxCodeBytes int         `json:"-"`
	Refresh      bool        `json:"-"` // skip cache reads
	Logger       *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ID identifies the run in logs and API responses.
	ID uuid.UUID

	// Forest is the parsed block tree.
	Forest []*pseudocode.Node

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	pseudocode.Stats
	Lines      int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ParseHit  bool // Whether the tree came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates.
func ParseFormats(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks the title and the program.
func (o *Options) ValidateForParse() error {
	o.Title = strings.TrimSpace(o.Title)
	o.Author = strings.TrimSpace(o.Author)
	if err := errors.ValidateTitle(o.Title); err != nil {
		return err
	}
	if o.MaxCodeBytes == 0 {
		o.MaxCodeBytes = DefaultMaxCodeBytes
	}
	if err := errors.ValidateCode(o.Code, o.MaxCodeBytes); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	return ValidateFormats(o.Formats)
}

// ContentHash identifies the program and its headings.
func (o Options) ContentHash() string {
	return cache.HashStrings(o.Title, o.Author, o.Code)
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:      format,
		Strict:      o.Strict,
		ActionLabel: o.ActionLabel,
	}
	if format == FormatPNG || format == FormatTreePNG {
		opts.Format = fmt.Sprintf("%s@%g", format, o.Scale)
	}
	return opts
}
