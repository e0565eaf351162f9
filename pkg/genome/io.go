package genome

import (
	"encoding/json"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/genomap/pkg/errors"
)

// ReadJSON decodes a map from r and validates it.
//
//	{
//	  "name": "pUC19",
//	  "length": 2686,
//	  "circular": true,
//	  "features": [{"name": "lacZα", "start": 146, "stop": 469, "strand": "-"}]
//	}
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Map, error) {
	var m Map
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ReadTOML decodes a map written as TOML, with one [[features]] table per
// feature, and validates it.
func ReadTOML(r io.Reader) (*Map, error) {
	var m Map
	if _, err := toml.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ImportFile reads the map at path, choosing the decoder from the file
// extension (.json or .toml).
func ImportFile(path string) (*Map, error) {
	format, err := errors.ValidateMapFile(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	if format == "toml" {
		return ReadTOML(f)
	}
	return ReadJSON(f)
}

// WriteJSON encodes m to w as indented JSON.
func WriteJSON(w io.Writer, m *Map) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}
