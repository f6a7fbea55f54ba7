package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gcbaptista/review-radar/model"
)

// ReadRawRecords decodes raw review rows from either a JSON array or a
// stream of JSON objects (NDJSON). Numbers are kept as json.Number so
// integer fields survive without float rounding.
func ReadRawRecords(r io.Reader) ([]model.RawRecord, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return []model.RawRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()

	if first == '[' {
		var rows []model.RawRecord
		if err := dec.Decode(&rows); err != nil {
			return nil, fmt.Errorf("failed to decode row array: %w", err)
		}
		if rows == nil {
			rows = []model.RawRecord{}
		}
		return rows, nil
	}

	rows := []model.RawRecord{}
	for {
		var row model.RawRecord
		err := dec.Decode(&row)
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode row %d: %w", len(rows), err)
		}
		rows = append(rows, row)
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
