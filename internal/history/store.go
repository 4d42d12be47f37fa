package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// Store defines the dataset operations the rest of the application uses.
type Store interface {
	// MigrateIfNeeded upgrades a legacy (pre multi-hut) dataset in place,
	// exactly once. It must run before any append.
	MigrateIfNeeded() error
	// AppendBatch persists one polling pass. It writes the canonical header
	// first if the file is new and never reorders or rewrites existing rows.
	AppendBatch(rows []Row) error
	// ReadAll returns every well-formed row currently in the dataset.
	ReadAll() ([]Row, error)
}

// MigrationError is fatal: the dataset exists but could not be upgraded to
// the current schema. Nothing may be appended to a file of unknown shape.
type MigrationError struct {
	Path string
	Err  error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migrating dataset %s: %v", e.Path, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// WriteError is fatal: the dataset could not be opened or grown.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing dataset %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// FileStore is the CSV-file-backed Store. The file is the single source of
// truth; it only ever grows, except for the one-time schema migration which
// rewrites it atomically.
type FileStore struct {
	path string
}

// NewFileStore creates a store for the dataset at path. The file itself is
// created lazily on the first append.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the dataset location.
func (s *FileStore) Path() string { return s.path }

// MigrateIfNeeded detects a legacy dataset (header without the Huette column)
// and rewrites it in the current schema, backfilling every row with the
// single hut that was tracked before multi-hut support. A current dataset
// costs one header read; a missing file is already current.
func (s *FileStore) MigrateIfNeeded() error {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &MigrationError{Path: s.path, Err: err}
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		f.Close()
		return &MigrationError{Path: s.path, Err: err}
	}
	if columnIndex(header, colHut) >= 0 {
		// Already current; no I/O beyond the header read.
		if err := f.Close(); err != nil {
			return &MigrationError{Path: s.path, Err: err}
		}
		return nil
	}

	// Legacy schema. An empty file counts too and becomes a header-only
	// current file. Load everything before rewriting.
	records, err := r.ReadAll()
	if err != nil {
		f.Close()
		return &MigrationError{Path: s.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &MigrationError{Path: s.path, Err: err}
	}

	migrated := make([][]string, 0, len(records))
	for _, rec := range records {
		migrated = append(migrated, []string{
			fieldByName(header, rec, colRetrieved),
			legacyHut,
			fieldByName(header, rec, colBooking),
			fieldByName(header, rec, colFreeBeds),
			fieldByName(header, rec, colCapacity),
			fieldByName(header, rec, colStatus),
		})
	}

	if err := s.rewrite(migrated); err != nil {
		return &MigrationError{Path: s.path, Err: err}
	}
	return nil
}

// rewrite replaces the dataset with header + rows via a temp file in the same
// directory and a rename, so no reader ever observes a half-written file.
func (s *FileStore) rewrite(records [][]string) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	w := csv.NewWriter(tmp)
	if err := w.Write(canonicalHeader()); err != nil {
		tmp.Close()
		return err
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}

// AppendBatch appends one pass worth of rows in the given order. The file and
// its header are created on first use; afterwards the header is never written
// again. The batch is flushed as a single buffered write.
func (s *FileStore) AppendBatch(rows []Row) error {
	exists := true
	if _, err := os.Stat(s.path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return &WriteError{Path: s.path, Err: err}
		}
		exists = false
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return &WriteError{Path: s.path, Err: err}
	}

	w := csv.NewWriter(f)
	if !exists {
		if err := w.Write(canonicalHeader()); err != nil {
			f.Close()
			return &WriteError{Path: s.path, Err: err}
		}
	}
	for _, row := range rows {
		if err := w.Write(encodeRow(row)); err != nil {
			f.Close()
			return &WriteError{Path: s.path, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return &WriteError{Path: s.path, Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return &WriteError{Path: s.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{Path: s.path, Err: err}
	}
	return nil
}

// ReadAll parses the dataset for read-only consumers. Columns are resolved by
// header name; a dataset still lacking the Huette column is read with the
// legacy hut backfilled. Rows with unparseable dates or bed counts are
// skipped. A missing file yields no rows.
func (s *FileStore) ReadAll() ([]Row, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading dataset header %s: %w", s.path, err)
	}

	var rows []Row
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading dataset %s: %w", s.path, err)
		}

		row, ok := decodeRow(header, rec)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func encodeRow(row Row) []string {
	return []string{
		FormatDate(row.RetrievedAt),
		row.Hut,
		FormatDate(row.BookingDate),
		strconv.Itoa(row.FreeBeds),
		strconv.Itoa(row.Capacity),
		row.Status,
	}
}

// decodeRow maps one record onto a Row using the file's own header. ok is
// false for rows that cannot be interpreted.
func decodeRow(header, rec []string) (Row, bool) {
	retrieved, err := ParseDate(fieldByName(header, rec, colRetrieved))
	if err != nil {
		return Row{}, false
	}
	booking, err := ParseDate(fieldByName(header, rec, colBooking))
	if err != nil {
		return Row{}, false
	}
	freeBeds, err := strconv.Atoi(fieldByName(header, rec, colFreeBeds))
	if err != nil {
		return Row{}, false
	}

	hutName := fieldByName(header, rec, colHut)
	if columnIndex(header, colHut) < 0 {
		hutName = legacyHut
	}

	// Unknown capacity falls back to the free-bed count, as in Normalize.
	capacity, err := strconv.Atoi(fieldByName(header, rec, colCapacity))
	if err != nil {
		capacity = freeBeds
	}

	return Row{
		RetrievedAt: retrieved,
		Hut:         hutName,
		BookingDate: booking,
		FreeBeds:    freeBeds,
		Capacity:    capacity,
		Status:      fieldByName(header, rec, colStatus),
	}, true
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func fieldByName(header, rec []string, name string) string {
	i := columnIndex(header, name)
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}
