// Package cleaner repairs source text where possible and flags rows that
// cannot be repaired.
//
// Two character classes drive the split:
//
//   - Cleanable characters (typography artifacts such as smart quotes,
//     trademark signs, zero-width spaces) are silently replaced or removed.
//   - Uncleanable characters (NUL bytes, control characters, EBCDIC
//     conversion artifacts, the U+FFFD replacement character, private-use
//     code points) indicate upstream corruption that replacement would only
//     hide. Any cell containing one marks the whole row dirty; dirty rows
//     are reported, never landed.
package cleaner

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// cleanable maps typography and encoding artifacts to their replacements.
// Underscores become spaces because source systems use them in place of
// spaces in names.
var cleanable = strings.NewReplacer(
	"™", "", // trademark
	"®", "", // registered
	"©", "", // copyright
	"“", `"`, // smart quote left
	"”", `"`, // smart quote right
	"‘", "'", // smart apostrophe left
	"’", "'", // smart apostrophe right
	"–", "-", // en dash
	"—", "-", // em dash
	"…", "...", // ellipsis
	"\u200B", "", // zero-width space
	"\uFEFF", "", // byte order mark
	"_", " ",
)

// IssueKind names a class of uncleanable characters.
type IssueKind string

const (
	IssueNullChar        IssueKind = "null_char"
	IssueControlChars    IssueKind = "control_chars"
	IssueEscapeChar      IssueKind = "escape_char"
	IssueEBCDICNewline   IssueKind = "ebcdic_newline"
	IssueEBCDICArtifacts IssueKind = "ebcdic_artifacts"
	IssueReplacementChar IssueKind = "replacement_char"
	IssuePrivateUse      IssueKind = "private_use"
)

type pattern struct {
	kind        IssueKind
	description string
	re          *regexp.Regexp
}

// uncleanable patterns are checked in a fixed order so reports are stable.
// The escape character is also inside the control range; the original
// cleaning rules report it under both kinds, and that double-counting is
// kept for compatibility.
var uncleanable = []pattern{
	{IssueNullChar, "NULL character - binary data corruption", regexp.MustCompile(`\x00`)},
	{IssueControlChars, "control characters - mainframe/legacy system artifacts", regexp.MustCompile(`[\x01-\x08\x0B\x0C\x0E-\x1F]`)},
	{IssueEscapeChar, "escape character - terminal sequences", regexp.MustCompile(`\x1B`)},
	{IssueEBCDICNewline, "EBCDIC newline - mainframe data", regexp.MustCompile(`\x{0085}`)},
	{IssueEBCDICArtifacts, "EBCDIC conversion artifacts - mainframe migration issue", regexp.MustCompile(`[\x{008D}\x{008F}\x{0090}\x{009D}]`)},
	{IssueReplacementChar, "replacement character - encoding error (data loss)", regexp.MustCompile(`\x{FFFD}`)},
	{IssuePrivateUse, "private use area - custom/proprietary characters", regexp.MustCompile(`[\x{E000}-\x{F8FF}]`)},
}

// maxIssueSamples bounds the sample characters retained per issue.
const maxIssueSamples = 3

// Issue describes one class of uncleanable characters found in a value.
type Issue struct {
	Kind        IssueKind
	Description string
	Count       int
	Samples     []string // quoted representations of the first few matches
}

// CellIssue ties issues to the cell (0-based column index) they occurred in.
type CellIssue struct {
	Column int
	Value  string // truncated for display
	Issues []Issue
}

// Cleaner applies the cleaning rules. MaxLen, when > 0, truncates cleaned
// values to that many runes so landed text never exceeds the declared column
// length (truncation, not failure, is the documented behavior).
type Cleaner struct {
	MaxLen int
}

// CleanText repairs cleanable characters and collapses runs of whitespace.
// The input is NFC-normalized first so decomposed sequences compare sanely.
func (c Cleaner) CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = cleanable.Replace(norm.NFC.String(s))
	s = strings.Join(strings.Fields(s), " ")
	if c.MaxLen > 0 {
		if r := []rune(s); len(r) > c.MaxLen {
			s = string(r[:c.MaxLen])
		}
	}
	return s
}

// Inspect reports the uncleanable character classes present in s. A nil
// result means the value is repairable.
func (c Cleaner) Inspect(s string) []Issue {
	if s == "" {
		return nil
	}
	s = norm.NFC.String(s)

	var issues []Issue
	for _, p := range uncleanable {
		matches := p.re.FindAllString(s, -1)
		if len(matches) == 0 {
			continue
		}
		n := len(matches)
		if n > maxIssueSamples {
			matches = matches[:maxIssueSamples]
		}
		samples := make([]string, len(matches))
		for i, m := range matches {
			samples[i] = strconv.Quote(m)
		}
		issues = append(issues, Issue{
			Kind:        p.kind,
			Description: p.description,
			Count:       n,
			Samples:     samples,
		})
	}
	return issues
}

// CleanRow inspects every cell of a row. When no cell has uncleanable
// characters, it returns the repaired cells and a nil issue list. When any
// cell is uncleanable the original cells are returned untouched along with
// the per-cell issues; the caller routes the row to the dirty report.
func (c Cleaner) CleanRow(cells []string) ([]string, []CellIssue) {
	var dirty []CellIssue
	for i, v := range cells {
		if issues := c.Inspect(v); issues != nil {
			dirty = append(dirty, CellIssue{
				Column: i,
				Value:  truncateForDisplay(v, 100),
				Issues: issues,
			})
		}
	}
	if dirty != nil {
		return cells, dirty
	}

	out := make([]string, len(cells))
	for i, v := range cells {
		out[i] = c.CleanText(v)
	}
	return out, nil
}

func truncateForDisplay(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
