package result

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSON writes entries as an indented JSON array.
func WriteJSON(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if entries == nil {
		entries = []Entry{}
	}
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ReadJSON reads entries written by WriteJSON.
func ReadJSON(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return entries, nil
}
