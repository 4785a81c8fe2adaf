// Package models defines the client-side entities exchanged with the Impify
// API: notes, folders, flashcards, notifications, gamification and quota
// snapshots, and authentication payloads.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an entity identifier. The API emits both numeric and string ids, so
// ID accepts either form and always holds the decimal/string text.
type ID string

func (id ID) String() string { return string(id) }

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// IDs converts plain strings to IDs.
func IDs(ss ...string) []ID {
	out := make([]ID, len(ss))
	for i, s := range ss {
		out[i] = ID(s)
	}
	return out
}
