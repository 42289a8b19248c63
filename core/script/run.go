package script

import (
	"fmt"
	"math"

	ferrors "github.com/FocuswithJustin/FieldChart/core/errors"
	"github.com/FocuswithJustin/FieldChart/core/history"
	"github.com/FocuswithJustin/FieldChart/core/show"
)

// Result counts what a run did.
type Result struct {
	Executed int // commands recorded in the history
	NoOps    int // statements that would not have changed the show
	Undone   int
	Redone   int
}

// Run executes sc against s through h. It stops at the first failing
// statement; everything before it stays applied and can be undone.
func Run(h *history.Stack, s *show.Show, sc *Script) (Result, error) {
	var res Result
	for _, st := range sc.Statements {
		if err := step(h, s, st, &res); err != nil {
			return res, fmt.Errorf("line %d: %w", st.Pos.Line, err)
		}
	}
	return res, nil
}

func step(h *history.Stack, s *show.Show, st *Statement, res *Result) error {
	switch {
	case st.Undo:
		ok, err := h.Undo(s)
		if ok {
			res.Undone++
		}
		return err
	case st.Redo:
		ok, err := h.Redo(s)
		if ok {
			res.Redone++
		}
		return err
	}
	p, err := compile(s, st)
	if err != nil {
		return err
	}
	if h.Execute(s, p) {
		res.Executed++
	} else {
		res.NoOps++
	}
	return nil
}

// compile turns one statement into a command pair for the show as it is now.
func compile(s *show.Show, st *Statement) (show.Pair, error) {
	switch {
	case st.Sheet != nil:
		return s.CreateSetCurrentSheetCommand(*st.Sheet)
	case st.Select != nil:
		return s.CreateSetSelectionCommand(selection(s, st.Select))
	case st.Move != nil:
		ref := 0
		if st.Move.Ref != nil {
			ref = *st.Move.Ref
		}
		pos, err := show.StepCoord(st.Move.X, st.Move.Y)
		if err != nil {
			return show.Pair{}, err
		}
		return s.CreateMovePointsCommand(map[int]show.Coord{st.Move.Point: pos}, ref)
	case st.Title != nil:
		return s.CreateSetSheetTitleCommand(*st.Title)
	case st.Beats != nil:
		if *st.Beats < 0 || int64(*st.Beats) > math.MaxUint32 {
			return show.Pair{}, ferrors.NewValidation("beats", fmt.Sprintf("must be between 0 and %d", uint32(math.MaxUint32)))
		}
		return s.CreateSetSheetBeatsCommand(uint32(*st.Beats))
	case st.Symbol != nil:
		sym, err := symbol(*st.Symbol)
		if err != nil {
			return show.Pair{}, err
		}
		return s.CreateSetSymbolCommand(sym)
	case st.Continuity != nil:
		sym, err := symbol(st.Continuity.Symbol)
		if err != nil {
			return show.Pair{}, err
		}
		return s.CreateSetContinuityCommand(sym, st.Continuity.Text)
	case st.Label != nil:
		switch *st.Label {
		case "left":
			return s.CreateSetLabelSideCommand(false)
		case "right":
			return s.CreateSetLabelSideCommand(true)
		}
		return s.CreateToggleLabelFlipCommand()
	case st.Hide != nil:
		return s.CreateSetLabelVisibilityCommand(visibility(st.Hide, false))
	case st.Reveal != nil:
		return s.CreateSetLabelVisibilityCommand(visibility(st.Reveal, true))
	case st.AddSheet != nil:
		at := s.GetCurrentSheetNum() + 1
		if st.AddSheet.At != nil {
			at = *st.AddSheet.At
		}
		sh := show.NewSheet(s.GetNumPoints(), st.AddSheet.Name)
		if cur := s.GetCurrentSheet(); cur != nil {
			sh = cur.CloneAs(st.AddSheet.Name)
		}
		return s.CreateAddSheetsCommand([]*show.Sheet{sh}, at)
	case st.RemoveSheet != nil:
		return s.CreateRemoveSheetCommand(*st.RemoveSheet)
	case st.Describe != nil:
		return s.CreateSetDescriptionCommand(*st.Describe)
	}
	return show.Pair{}, ferrors.NewValidation("statement", "empty statement")
}

func selection(s *show.Show, sel *Selection) show.SelectionList {
	switch {
	case sel.All:
		return s.MakeSelectAll()
	case sel.None:
		return s.MakeUnselectAll()
	}
	return show.NewSelectionList(sel.Points...)
}

func symbol(name string) (show.Symbol, error) {
	sym, ok := show.ParseSymbol(name)
	if !ok {
		return 0, ferrors.NewUnsupported("symbol", name)
	}
	return sym, nil
}

func visibility(points []int, visible bool) map[int]bool {
	m := make(map[int]bool, len(points))
	for _, p := range points {
		m[p] = visible
	}
	return m
}
