// Package roster imports marcher rosters from XML.
//
//	<roster columns="4">
//	  <marcher label="T1" instrument="Trumpet"/>
//	  <marcher label="D1"/>
//	</roster>
//
// Marchers keep document order. Labels must be unique and non-empty.
package roster

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	ferrors "github.com/FocuswithJustin/FieldChart/core/errors"
	"github.com/FocuswithJustin/FieldChart/core/show"
)

// DefaultColumns is the layout width when the roster does not give one.
const DefaultColumns = 8

var (
	rootExpr    = xpath.MustCompile("/roster")
	marcherExpr = xpath.MustCompile("/roster/marcher")
)

// Roster is a parsed roster document.
type Roster struct {
	Columns  int
	Marchers []show.Marcher
}

// Parse reads a roster document.
func Parse(data []byte) (*Roster, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, parseError("parsing XML: %v", err)
	}
	root := xmlquery.QuerySelector(doc, rootExpr)
	if root == nil {
		return nil, parseError("missing <roster> element")
	}

	r := &Roster{Columns: DefaultColumns}
	if v := strings.TrimSpace(root.SelectAttr("columns")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, parseError("columns %q is not a positive integer", v)
		}
		r.Columns = n
	}

	seen := map[string]int{}
	for i, n := range xmlquery.QuerySelectorAll(doc, marcherExpr) {
		label := strings.TrimSpace(n.SelectAttr("label"))
		if label == "" {
			return nil, parseError("marcher %d has no label", i)
		}
		if j, dup := seen[label]; dup {
			return nil, parseError("label %q used by marchers %d and %d", label, j, i)
		}
		seen[label] = i
		r.Marchers = append(r.Marchers, show.Marcher{
			Label:      label,
			Instrument: strings.TrimSpace(n.SelectAttr("instrument")),
		})
	}
	if len(r.Marchers) > show.MaxPoints {
		return nil, ferrors.NewOutOfRange("marcher count", len(r.Marchers), show.MaxPoints+1)
	}
	return r, nil
}

// Apply returns a command that sets the show's marchers to the roster.
// Marchers beyond the show's current count are laid out from origin.
func (r *Roster) Apply(s *show.Show, origin show.Coord) (show.Pair, error) {
	return s.CreateSetupMarchersCommand(r.Marchers, r.Columns, origin)
}

func parseError(format string, args ...any) error {
	return ferrors.NewParse("roster", "", fmt.Sprintf(format, args...))
}
