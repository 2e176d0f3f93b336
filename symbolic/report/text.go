package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxCellWidth is the widest a table cell is printed before it is truncated.
const maxCellWidth = 60

// table lays out rows of cells in aligned columns. Widths are measured in terminal cells, so that wide characters in
// conditions or string outcomes do not break the alignment.
type table struct {
	header []string
	rows   [][]string
}

func (t *table) addRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) write(w io.Writer) error {
	widths := make([]int, len(t.header))
	for _, row := range append([][]string{t.header}, t.rows...) {
		for i, cell := range row {
			widths[i] = max(widths[i], min(runewidth.StringWidth(cell), maxCellWidth))
		}
	}

	var sb strings.Builder
	writeRow := func(row []string) {
		for i, cell := range row {
			cell = runewidth.Truncate(cell, maxCellWidth, "...")
			if i == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString("  ")
		}
		sb.WriteString("\n")
	}

	writeRow(t.header)
	separators := make([]string, len(widths))
	for i, width := range widths {
		separators[i] = strings.Repeat("-", width)
	}
	writeRow(separators)
	for _, row := range t.rows {
		writeRow(row)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteText writes a human-readable rendition of the report: a table of the test cases followed by the dead and failed
// paths and the replay verdict.
func WriteText(w io.Writer, r *Report) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Function %s (%s) in %s\n", r.Target.Function, r.Target.Language, r.Target.File)
	fmt.Fprintf(&sb, "%d path(s): %d test case(s), %d dead, %d failed, %d duplicate(s) [%s, %dms]\n\n",
		r.Summary.Paths, r.Summary.TestCases, r.Summary.DeadPaths, r.Summary.FailedPaths, r.Summary.Duplicates, r.Backend, r.Summary.DurationMs)
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}

	if len(r.TestCases) > 0 {
		cases := &table{header: []string{"PATH", "INPUTS", "OUTCOME", "EXPECTED", "NOTE"}}
		for _, testCase := range r.TestCases {
			expected := ""
			if testCase.Expected != nil {
				expected = testCase.Expected.String()
			}
			note := ""
			if testCase.IsDuplicate() {
				note = fmt.Sprintf("same inputs as %v", pathList(testCase.DuplicateOf))
			}
			cases.addRow(fmt.Sprintf("#%d", testCase.PathID), testCase.InputTuple(), testCase.Outcome, expected, note)
		}
		if err := cases.write(w); err != nil {
			return err
		}
	}

	if len(r.DeadPaths) > 0 {
		if _, err := io.WriteString(w, "\nDead paths (no input satisfies the condition):\n"); err != nil {
			return err
		}
		dead := &table{header: []string{"PATH", "OUTCOME", "CONDITION"}}
		for _, path := range r.DeadPaths {
			dead.addRow(fmt.Sprintf("#%d", path.PathID), path.Outcome, path.Condition)
		}
		if err := dead.write(w); err != nil {
			return err
		}
	}

	if len(r.FailedPaths) > 0 {
		if _, err := io.WriteString(w, "\nFailed paths (the solver could not decide the condition):\n"); err != nil {
			return err
		}
		failed := &table{header: []string{"PATH", "OUTCOME", "CONDITION", "REASON"}}
		for _, path := range r.FailedPaths {
			reason := path.Diagnostic
			if path.Timeout {
				reason = "timeout"
			} else if reason == "" {
				reason = path.Error
			}
			failed.addRow(fmt.Sprintf("#%d", path.PathID), path.Outcome, path.Condition, reason)
		}
		if err := failed.write(w); err != nil {
			return err
		}
	}

	if v := r.Verification; v != nil {
		sb.Reset()
		fmt.Fprintf(&sb, "\nReplay (%s): ", strings.Join(v.Replayers, ", "))
		if v.Passed() {
			fmt.Fprintf(&sb, "all %d test case(s) reached their outcome\n", v.Replayed)
		} else {
			fmt.Fprintf(&sb, "%d mismatch(es)\n", len(v.Mismatches))
			for _, mismatch := range v.Mismatches {
				fmt.Fprintf(&sb, "  %s\n", mismatch.String())
			}
		}
		for name, reason := range v.Skipped {
			fmt.Fprintf(&sb, "  %s replay skipped: %s\n", name, reason)
		}
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// pathList formats path identifiers as "#1, #3".
func pathList(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("#%d", id)
	}
	return strings.Join(parts, ", ")
}
