package surveymeta

import (
	"github.com/goccy/go-json"

	"github.com/reoring/surveymeta/jsonpos"
)

// Unmarshal parses data and loads it into obj. The parsed objects keep their
// source offsets, so the JSON errors carry At/End. A syntax error is returned
// as is; otherwise the result is Err().
func (j *JSONObject) Unmarshal(data []byte, obj Object) error {
	m, err := jsonpos.ParseObject(data)
	if err != nil {
		return err
	}
	j.ToObject(m, obj)
	return j.Err()
}

// Marshal serializes obj and encodes the result.
func (j *JSONObject) Marshal(obj Object, storeDefaults bool) ([]byte, error) {
	return json.Marshal(j.ToJSONObject(obj, storeDefaults))
}

// MarshalIndent is Marshal with indentation.
func (j *JSONObject) MarshalIndent(obj Object, storeDefaults bool, indent string) ([]byte, error) {
	return json.MarshalIndent(j.ToJSONObject(obj, storeDefaults), "", indent)
}
