package sheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Delimiter separates fields in clean files. The first line of every clean
// file is a "sep=" hint so spreadsheet tools split columns correctly.
const Delimiter = '|'

const sepHint = "sep=|"

const cleanSuffix = "_clean.csv"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CleanPath returns where the clean file of source is written:
// <cleanDir>/<year folder>/<stem>_clean.csv.
func CleanPath(cleanDir, source string) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(cleanDir, YearFolder(source), stem+cleanSuffix)
}

// WriteDelimited writes t to path through a temporary file so a partial
// file never passes for a finished one.
func WriteDelimited(path string, t Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := encodeDelimited(f, t); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func encodeDelimited(w io.Writer, t Table) error {
	if _, err := io.WriteString(w, sepHint+"\n"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, c := range t.Columns {
			record[i] = r[c]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadDelimited reads a clean file. The sep hint line and a UTF-8 BOM are
// optional.
func ReadDelimited(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()
	return decodeDelimited(f)
}

func decodeDelimited(r io.Reader) (Table, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	if b, err := br.Peek(len(sepHint)); err == nil && strings.EqualFold(string(b), sepHint) {
		if _, err := br.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
			return Table{}, err
		}
	}
	cr := csv.NewReader(br)
	cr.Comma = Delimiter
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, fmt.Errorf("missing header")
		}
		return Table{}, err
	}
	t := Table{Columns: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, err
		}
		row := make(Row, len(header))
		for i, c := range header {
			if i < len(rec) {
				row[c] = rec[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// RequireColumns reports the first of cols missing from t.
func RequireColumns(t Table, cols []string) error {
	for _, c := range cols {
		if !t.hasColumn(c) {
			return fmt.Errorf("missing column %q", c)
		}
	}
	return nil
}
