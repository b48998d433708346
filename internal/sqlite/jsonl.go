package sqlite

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// ReadRowsJSONL reads a JSONL file holding one JSON array per line and
// decodes each array into shape. Blank lines are skipped; any other line
// that does not decode fails the whole read.
func ReadRowsJSONL(path string, shape types.Shape) ([]types.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var rows []types.Row
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for n := 1; scanner.Scan(); n++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		row, err := decodeJSONRow(line, shape)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, n, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return rows, nil
}

func decodeJSONRow(line []byte, shape types.Shape) (types.Row, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	var cells []any
	if err := dec.Decode(&cells); err != nil {
		return nil, &types.Error{Kind: types.DecodeFailed, Message: "malformed record", Err: err}
	}
	if len(cells) != len(shape) {
		return nil, &types.Error{
			Kind:    types.DecodeFailed,
			Message: fmt.Sprintf("record has %d values, shape has %d", len(cells), len(shape)),
		}
	}
	row := make(types.Row, len(cells))
	for i, c := range cells {
		v, err := jsonValue(shape[i], c)
		if err != nil {
			return nil, &types.Error{Kind: types.DecodeFailed, ValueKind: shape[i], Message: fmt.Sprintf("value %d", i+1), Err: err}
		}
		row[i] = v
	}
	return row, nil
}

// jsonValue converts one decoded JSON cell. null becomes the zero value of
// k, matching how NULL columns decode.
func jsonValue(k types.Kind, c any) (types.Value, error) {
	switch x := c.(type) {
	case nil:
		if k == types.KindText {
			return types.Text(""), nil
		}
		return types.ParseValue(k, "0")
	case json.Number:
		return types.ParseValue(k, x.String())
	case string:
		return types.ParseValue(k, x)
	}
	return types.Value{}, fmt.Errorf("unsupported JSON value %T", c)
}

// WriteRowsJSONL atomically writes rows to path, one JSON array per line,
// using the temp-file, fsync, rename pattern.
func WriteRowsJSONL(path string, rows []types.Row) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(format string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf(format, err)
	}

	w := bufio.NewWriter(tmp)
	for _, r := range rows {
		cells := make([]any, len(r))
		for i, v := range r {
			cells[i] = v.Interface()
		}
		rec, err := json.Marshal(cells)
		if err != nil {
			return fail("encoding record: %w", err)
		}
		if _, err := w.Write(rec); err != nil {
			return fail("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
