// Package canvas defines the drawing surface the structured-paper layout
// writes to, together with in-memory implementations.
//
// Coordinates are spreadsheet-like: rows and columns are 1-based. A Canvas
// only receives operations; sinks in pkg/render/sink turn a populated [Grid]
// into files.
package canvas

import (
	"fmt"
	"strings"

	"github.com/matzehuels/cartastrutturata/pkg/highlight"
)

// Canvas receives draw operations.
type Canvas interface {
	// WriteText places styled runs in a cell, replacing any previous text.
	WriteText(row, col int, runs []highlight.Run, style TextStyle)
	// DrawBorder sets the edges drawn around a cell.
	DrawBorder(row, col int, edges Edge)
	// SetRowFill paints the background of an entire row.
	SetRowFill(row int, fill Fill)
	// SetColumnWidth sets a column width in character units.
	SetColumnWidth(col int, width float64)
}

// Edge is a set of cell border sides.
type Edge uint8

const (
	EdgeTop Edge = 1 << iota
	EdgeBottom
	EdgeLeft
)

var edgeNames = []struct {
	edge Edge
	name string
}{
	{EdgeTop, "top"},
	{EdgeBottom, "bottom"},
	{EdgeLeft, "left"},
}

// Has reports whether every side in x is set in e.
func (e Edge) Has(x Edge) bool { return e&x == x }

func (e Edge) String() string {
	if e == 0 {
		return "none"
	}
	var parts []string
	for _, en := range edgeNames {
		if e.Has(en.edge) {
			parts = append(parts, en.name)
		}
	}
	return strings.Join(parts, "|")
}

func (e Edge) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e *Edge) UnmarshalText(b []byte) error {
	*e = 0
	s := string(b)
	if s == "" || s == "none" {
		return nil
	}
	for _, part := range strings.Split(s, "|") {
		found := false
		for _, en := range edgeNames {
			if en.name == part {
				*e |= en.edge
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown edge %q", part)
		}
	}
	return nil
}

// TextStyle selects the typeface treatment of a cell.
type TextStyle uint8

const (
	TextPlain  TextStyle = iota // body text
	TextTitle                   // sheet title, bold
	TextBanner                  // section banner, light on gray
)

var styleNames = [...]string{"plain", "title", "banner"}

func (s TextStyle) String() string {
	if int(s) < len(styleNames) {
		return styleNames[s]
	}
	return fmt.Sprintf("style(%d)", s)
}

func (s TextStyle) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *TextStyle) UnmarshalText(b []byte) error {
	for i, name := range styleNames {
		if name == string(b) {
			*s = TextStyle(i)
			return nil
		}
	}
	return fmt.Errorf("unknown text style %q", b)
}

// Fill is an ARGB hex colour such as "ffb4b4b4". The zero value means no fill.
type Fill string

// BannerFill is the background of section banner rows.
const BannerFill Fill = "ffb4b4b4"

// RGB returns the colour without its alpha channel, or "" for no fill.
func (f Fill) RGB() string {
	s := string(f)
	if len(s) == 8 {
		return s[2:]
	}
	return s
}

// Multi returns a Canvas that forwards every operation to each of cs.
func Multi(cs ...Canvas) Canvas {
	return multi(cs)
}

type multi []Canvas

func (m multi) WriteText(row, col int, runs []highlight.Run, style TextStyle) {
	for _, c := range m {
		c.WriteText(row, col, runs, style)
	}
}

func (m multi) DrawBorder(row, col int, edges Edge) {
	for _, c := range m {
		c.DrawBorder(row, col, edges)
	}
}

func (m multi) SetRowFill(row int, fill Fill) {
	for _, c := range m {
		c.SetRowFill(row, fill)
	}
}

func (m multi) SetColumnWidth(col int, width float64) {
	for _, c := range m {
		c.SetColumnWidth(col, width)
	}
}
