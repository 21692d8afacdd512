package repo

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/deptree/pkg/errors"
)

// Snapshot is the parsed content of one metadata export.
type Snapshot struct {
	Header      []string     // raw column names, in file order
	Raw         []Row        // every row with an org, duplicates included
	Rows        []Row        // rows that produced a record, raw keys
	Records     []*Record    // one per repository, in first-seen order
	Skipped     int          // rows dropped for a blank org or name
	Diagnostics []Diagnostic // data-quality problems in kept rows
}

// Load reads a CSV snapshot from path.
func Load(path string, cols Columns) (*Snapshot, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open snapshot %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, cols)
}

// Read parses a CSV snapshot with a header line.
func Read(r io.Reader, cols Columns) (*Snapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return &Snapshot{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read row %d", len(rows)+1)
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	snap := Build(rows, cols)
	snap.Header = header
	return snap, nil
}

// Build constructs records from already-split rows.
//
// Rows with a blank org column are malformed exports and are skipped, as are
// rows without a repository name. When two rows share a repository name the
// later row replaces the earlier one and a diagnostic is recorded.
func Build(rows []Row, cols Columns) *Snapshot {
	cols = cols.WithDefaults()
	orgKey := NormalizeKey(cols.Org)

	snap := &Snapshot{}
	pos := make(map[string]int)
	for _, raw := range rows {
		if strings.TrimSpace(NormalizeRow(raw)[orgKey]) == "" {
			snap.Skipped++
			continue
		}
		snap.Raw = append(snap.Raw, raw)
		rec, diags, err := FromRow(raw, cols)
		if err != nil {
			snap.Skipped++
			snap.Diagnostics = append(snap.Diagnostics, Diagnostic{Field: NormalizeKey(cols.Name), Err: err})
			continue
		}
		snap.Diagnostics = append(snap.Diagnostics, diags...)

		if i, dup := pos[rec.Name]; dup {
			snap.Diagnostics = append(snap.Diagnostics, Diagnostic{
				Repo:  rec.Name,
				Field: NormalizeKey(cols.Name),
				Err:   errors.New(errors.ErrCodeDuplicateRepo, "repository listed more than once, keeping the last row"),
			})
			snap.Records[i] = rec
			snap.Rows[i] = raw
			continue
		}
		pos[rec.Name] = len(snap.Records)
		snap.Records = append(snap.Records, rec)
		snap.Rows = append(snap.Rows, raw)
	}
	return snap
}

// EntryPoints returns the records marked as released, in snapshot order.
func (s *Snapshot) EntryPoints() []*Record {
	var out []*Record
	for _, r := range s.Records {
		if r.IsEntryPoint() {
			out = append(out, r)
		}
	}
	return out
}
