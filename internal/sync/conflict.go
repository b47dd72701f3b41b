package sync

import (
	"fmt"
	"strings"

	"github.com/klauern/razd/internal/canonical"
	"github.com/klauern/razd/internal/logging"
	"github.com/klauern/razd/internal/model"
)

// ConflictPreview shows how the tool sections of both files differ when
// both changed since the last sync.
type ConflictPreview struct {
	// RazdfilePath and MisePath are the two files in conflict.
	RazdfilePath string
	MisePath     string

	// RazdfileLines and MiseLines are the canonical tool sections.
	RazdfileLines []string
	MiseLines     []string

	// Hunks contains the detected diff hunks, Razdfile lines as removed
	// and mise.toml lines as added.
	Hunks []DiffHunk
}

// DiffHunk represents a contiguous block of changes in a diff.
type DiffHunk struct {
	// RazdfileStart is the starting line number in the Razdfile section.
	RazdfileStart int

	// RazdfileCount is the number of lines from the Razdfile section.
	RazdfileCount int

	// MiseStart is the starting line number in the mise.toml section.
	MiseStart int

	// MiseCount is the number of lines from the mise.toml section.
	MiseCount int

	// Lines contains the diff lines with prefixes (+, -, space).
	Lines []DiffLine
}

// Header returns the unified diff hunk header.
func (h DiffHunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.RazdfileStart, h.RazdfileCount, h.MiseStart, h.MiseCount)
}

// DiffLine represents a single line in a diff.
type DiffLine struct {
	// Type indicates if this line is added, removed, or unchanged.
	Type DiffLineType

	// Content is the actual line content.
	Content string
}

// DiffLineType indicates the type of a diff line.
type DiffLineType string

const (
	// DiffLineContext is an unchanged line (context).
	DiffLineContext DiffLineType = " "

	// DiffLineAdded is a line only present in mise.toml.
	DiffLineAdded DiffLineType = "+"

	// DiffLineRemoved is a line only present in the Razdfile.
	DiffLineRemoved DiffLineType = "-"
)

// String returns a human-readable representation of the diff line.
func (dl DiffLine) String() string {
	return string(dl.Type) + dl.Content
}

// NewConflictPreview diffs the canonical tool sections of the two files.
// Either section may be nil when the file is missing or unreadable.
func NewConflictPreview(razdfilePath, misePath string, razd, mise *model.ToolSection) *ConflictPreview {
	c := &ConflictPreview{
		RazdfilePath:  razdfilePath,
		MisePath:      misePath,
		RazdfileLines: sectionLines(razd),
		MiseLines:     sectionLines(mise),
	}
	c.Hunks = computeDiff(c.RazdfileLines, c.MiseLines)
	logging.Debug("computed conflict preview", logging.Operation("conflict"), "hunks", len(c.Hunks))
	return c
}

func sectionLines(ts *model.ToolSection) []string {
	text := strings.TrimSuffix(canonical.CanonicalizeTools(ts), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// ToolsDiffer reports whether the tool sections differ. Both files can
// change in ways that leave the tools identical, e.g. when only tasks
// were edited.
func (c *ConflictPreview) ToolsDiffer() bool {
	return len(c.Hunks) > 0
}

// DiffSummary returns a summary of the changes.
func (c *ConflictPreview) DiffSummary() string {
	added, removed := 0, 0
	for _, hunk := range c.Hunks {
		for _, line := range hunk.Lines {
			switch line.Type {
			case DiffLineAdded:
				added++
			case DiffLineRemoved:
				removed++
			}
		}
	}
	return fmt.Sprintf("%d hunk(s), +%d/-%d lines", len(c.Hunks), added, removed)
}

// Lines renders the preview as unified diff lines, at most limit diff
// lines when limit is positive.
func (c *ConflictPreview) Lines(limit int) []string {
	out := []string{"--- " + c.RazdfilePath, "+++ " + c.MisePath}
	shown := 0
	for _, hunk := range c.Hunks {
		out = append(out, hunk.Header())
		for _, line := range hunk.Lines {
			if limit > 0 && shown >= limit {
				return append(out, "... (truncated)")
			}
			out = append(out, line.String())
			shown++
		}
	}
	return out
}

// computeDiff computes the diff hunks between the two line sets, guided by
// their longest common subsequence.
func computeDiff(razd, mise []string) []DiffHunk {
	lcs := longestCommonSubsequence(razd, mise)

	var hunks []DiffHunk
	var current *DiffHunk

	ri, mi, li := 0, 0, 0
	for ri < len(razd) || mi < len(mise) {
		inLCS := li < len(lcs) &&
			ri < len(razd) &&
			mi < len(mise) &&
			razd[ri] == lcs[li] &&
			mise[mi] == lcs[li]

		if inLCS {
			if current != nil {
				current.Lines = append(current.Lines, DiffLine{Type: DiffLineContext, Content: razd[ri]})
				hunks = append(hunks, *current)
				current = nil
			}
			ri++
			mi++
			li++
			continue
		}

		if current == nil {
			current = &DiffHunk{RazdfileStart: ri + 1, MiseStart: mi + 1}
		}
		if ri < len(razd) && (li >= len(lcs) || razd[ri] != lcs[li]) {
			current.Lines = append(current.Lines, DiffLine{Type: DiffLineRemoved, Content: razd[ri]})
			current.RazdfileCount++
			ri++
		}
		if mi < len(mise) && (li >= len(lcs) || mise[mi] != lcs[li]) {
			current.Lines = append(current.Lines, DiffLine{Type: DiffLineAdded, Content: mise[mi]})
			current.MiseCount++
			mi++
		}
	}

	if current != nil {
		hunks = append(hunks, *current)
	}
	return hunks
}

func longestCommonSubsequence(a, b []string) []string {
	m, n := len(a), len(b)
	if m == 0 || n == 0 {
		return nil
	}

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}

	lcs := make([]string, dp[m][n])
	i, j, idx := m, n, dp[m][n]-1
	for i > 0 && j > 0 {
		switch {
		case a[i-1] == b[j-1]:
			lcs[idx] = a[i-1]
			i--
			j--
			idx--
		case dp[i-1][j] > dp[i][j-1]:
			i--
		default:
			j--
		}
	}
	return lcs
}
