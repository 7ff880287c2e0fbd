/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"bytes"
	"encoding/json"
)

// CustomFields is a map of extra fields of a struct, kept next to its typed fields in JSON.
type CustomFields map[string]interface{}

// marshalWithCustomFields marshals value merged with custom fields defined in the map into JSON bytes.
func marshalWithCustomFields(v interface{}, cf map[string]interface{}) ([]byte, error) {
	vm, err := toMap(v)
	if err != nil {
		return nil, err
	}

	// typed fields win over custom ones
	for k, v := range cf {
		if _, exists := vm[k]; !exists {
			vm[k] = v
		}
	}

	return json.Marshal(vm)
}

// unmarshalWithCustomFields unmarshals JSON into value v and puts all JSON fields which do not belong to value
// into custom fields map cf.
func unmarshalWithCustomFields(data []byte, v interface{}, cf map[string]interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}

	vf, err := toMap(v)
	if err != nil {
		return err
	}

	af, err := toMap(json.RawMessage(data))
	if err != nil {
		return err
	}

	for k, v := range af {
		if _, ok := vf[k]; !ok {
			cf[k] = v
		}
	}

	return nil
}

// toMap converts v to a JSON object map. Numbers are kept as json.Number.
func toMap(v interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var m map[string]interface{}

	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()

	if err := d.Decode(&m); err != nil {
		return nil, err
	}

	return m, nil
}
