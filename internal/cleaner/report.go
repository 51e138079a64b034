package cleaner

// maxDirtyDetails bounds the dirty-row details retained per file so a fully
// corrupted file cannot balloon the report. Counts keep accumulating past
// the cap.
const maxDirtyDetails = 50

// DirtyRow describes one rejected row.
type DirtyRow struct {
	// RowNumber is the 1-based line number in the source file, counting the
	// header line, to match what a user sees in a text editor.
	RowNumber int
	Data      []string // truncated cell samples
	Problems  []CellIssue
}

// FileReport accumulates cleaning results for one source file.
type FileReport struct {
	OriginalRows int
	CleanRows    int
	DirtyRows    int

	DirtyDetails []DirtyRow

	// ColumnsWithIssues marks 0-based column indexes where at least one
	// uncleanable character appeared across the file.
	ColumnsWithIssues map[int]bool
}

// NewFileReport returns an empty report.
func NewFileReport() *FileReport {
	return &FileReport{ColumnsWithIssues: map[int]bool{}}
}

// AddClean records one successfully repaired row.
func (r *FileReport) AddClean() {
	r.OriginalRows++
	r.CleanRows++
}

// AddDirty records one rejected row with its cell issues.
func (r *FileReport) AddDirty(rowNumber int, cells []string, problems []CellIssue) {
	r.OriginalRows++
	r.DirtyRows++

	for _, p := range problems {
		r.ColumnsWithIssues[p.Column] = true
	}

	if len(r.DirtyDetails) >= maxDirtyDetails {
		return
	}
	data := make([]string, len(cells))
	for i, v := range cells {
		data[i] = truncateForDisplay(v, 50)
	}
	r.DirtyDetails = append(r.DirtyDetails, DirtyRow{
		RowNumber: rowNumber,
		Data:      data,
		Problems:  problems,
	})
}

// HasDirtyRows reports whether any row was rejected.
func (r *FileReport) HasDirtyRows() bool { return r.DirtyRows > 0 }
