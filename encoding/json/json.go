// Package json encodes with json-iterator configured to behave like
// encoding/json
package json

import (
	stdjson "encoding/json"

	jsoniter "github.com/json-iterator/go"
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary

// Number is a JSON number literal
type Number = stdjson.Number

// Marshal returns the JSON encoding of v
func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// MarshalIndent is Marshal with each element on a new, indented line
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}

// Unmarshal parses the JSON encoded data into v
func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}
