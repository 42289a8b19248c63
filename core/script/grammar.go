// Package script parses and runs edit scripts: line-oriented lists of show
// edits that compile to command pairs and go through the undo history.
//
//	# tighten the opener
//	sheet 0
//	select 0 1 2
//	symbol solsl
//	continuity solsl "MT 8 E"
//	move 3 to -4,6 ref 1
//	addsheet "Set 2" at 1
//	undo
//
// Point and sheet numbers are zero-based. Coordinates are whole steps.
package script

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	ferrors "github.com/FocuswithJustin/FieldChart/core/errors"
)

// Script is a parsed edit script.
type Script struct {
	Statements []*Statement `@@*`
}

// Statement is one edit. Exactly one field other than Pos is set.
type Statement struct {
	Pos lexer.Position

	Sheet       *int        `  "sheet" @Number`
	Select      *Selection  `| "select" @@`
	Move        *Move       `| "move" @@`
	Title       *string     `| "title" @String`
	Beats       *int        `| "beats" @Number`
	Symbol      *string     `| "symbol" @(Ident | String)`
	Continuity  *Continuity `| "continuity" @@`
	Label       *string     `| "label" @("left" | "right" | "toggle")`
	Hide        []int       `| "hide" @Number+`
	Reveal      []int       `| "show" @Number+`
	AddSheet    *AddSheet   `| "addsheet" @@`
	RemoveSheet *int        `| "removesheet" @Number`
	Describe    *string     `| "describe" @String`
	Undo        bool        `| @"undo"`
	Redo        bool        `| @"redo"`
}

// Selection is the argument of select.
type Selection struct {
	All    bool  `  @"all"`
	None   bool  `| @"none"`
	Points []int `| @Number+`
}

// Move places one point, in steps, optionally in a reference group.
type Move struct {
	Point int  `@Number "to"`
	X     int  `@Number ","`
	Y     int  `@Number`
	Ref   *int `( "ref" @Number )?`
}

// Continuity sets the text for one symbol's slot.
type Continuity struct {
	Symbol string `@(Ident | String)`
	Text   string `@String`
}

// AddSheet copies the current sheet under a new name. Without At the copy
// goes right after the current sheet.
type AddSheet struct {
	Name string `@String`
	At   *int   `( "at" @Number )?`
}

var scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\r\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `-?\d+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `,`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var scriptParser = participle.MustBuild[Script](
	participle.Lexer(scriptLexer),
	participle.Unquote("String"),
	participle.Elide("Comment", "Whitespace"),
)

// Parse parses an edit script.
func Parse(src string) (*Script, error) {
	sc, err := scriptParser.ParseString("", src)
	if err != nil {
		return nil, &ferrors.ParseError{Format: "script", Message: err.Error(), Err: err}
	}
	return sc, nil
}
