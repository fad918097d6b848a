package service

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"

	perr "ecotrack/internal/platform/errors"
	"ecotrack/internal/services/discovery/domain"

	"gopkg.in/yaml.v3"
)

// LoadSeeds reads a YAML seeds file. An empty path or a missing file yields
// empty seeds
func LoadSeeds(path string) (domain.Seeds, error) {
	var s domain.Seeds
	if path == "" {
		return s, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, perr.Wrapf(err, perr.ErrorCodeIO, "read seeds %s", path)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return s, perr.Wrapf(err, perr.ErrorCodeDecode, "decode seeds %s", path)
	}
	return s, nil
}
