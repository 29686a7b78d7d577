package models

import (
	"bytes"
	"encoding/json"
)

// FlexString normalizes the backend's shape-shifting text fields. The API
// returns the same concept either as a raw string or wrapped in an object
// under "text", "name" or "label"; decoding collapses both shapes into one
// canonical string so the rest of the client never unwraps defensively.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var wrapped struct {
		Text  string `json:"text"`
		Name  string `json:"name"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return err
	}

	switch {
	case wrapped.Text != "":
		*f = FlexString(wrapped.Text)
	case wrapped.Name != "":
		*f = FlexString(wrapped.Name)
	default:
		*f = FlexString(wrapped.Label)
	}

	return nil
}

func (f FlexString) String() string {
	return string(f)
}
