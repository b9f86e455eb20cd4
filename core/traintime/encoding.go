package traintime

import "encoding/json"

// Time crosses checkpoint boundaries in its canonical textual form so
// the unexported fields survive gob and JSON.

// GobEncode implements gob.GobEncoder.
func (t Time) GobEncode() ([]byte, error) {
	return []byte(t.String()), nil
}

// GobDecode implements gob.GobDecoder.
func (t *Time) GobDecode(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
