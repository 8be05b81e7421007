package render

import "encoding/json"

// decodeJSONProp decodes a JSON-kind string prop into T. Props of this kind
// are stored as raw JSON strings and parse-validated only at the input
// widget, so render-time decoding must tolerate malformed content.
func decodeJSONProp[T any](s interface{ StringProp(string, string) string }, name string) (T, error) {
	var out T
	raw := s.StringProp(name, "")
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, err
	}
	return out, nil
}
