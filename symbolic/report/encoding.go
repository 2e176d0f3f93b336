package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/crytic/symgen/utils"
	"github.com/crytic/symgen/version"
	"github.com/fxamacker/cbor"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Serialized report formats, along with the file extension reports of that format are written with.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCBOR = "cbor"
)

// fileExtensions maps file extensions to serialized report formats.
var fileExtensions = map[string]string{
	".json": FormatJSON,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".cbor": FormatCBOR,
}

// FormatForPath returns the serialized format of a report file, inferred from its extension.
func FormatForPath(path string) (string, error) {
	format, ok := fileExtensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", errors.Errorf("cannot infer the report format of %v, expected a .json, .yaml or .cbor file", path)
	}
	return format, nil
}

// Encode serializes the report in the provided format.
func (r *Report) Encode(format string) ([]byte, error) {
	var (
		b   []byte
		err error
	)
	switch format {
	case FormatJSON:
		b, err = json.MarshalIndent(r, "", "\t")
	case FormatYAML:
		b, err = yaml.Marshal(r)
	case FormatCBOR:
		b, err = cbor.Marshal(r, cbor.EncOptions{})
	default:
		return nil, errors.Errorf("unsupported serialized report format %q", format)
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}

// Decode deserializes a report in the provided format and checks that its schema version is supported.
func Decode(b []byte, format string) (*Report, error) {
	report := &Report{}
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(b, report)
	case FormatYAML:
		err = yaml.Unmarshal(b, report)
	case FormatCBOR:
		err = cbor.Unmarshal(b, report)
	default:
		return nil, errors.Errorf("unsupported serialized report format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode the %v report", format)
	}

	if err = version.CheckReportCompatibility(report.SchemaVersion); err != nil {
		return nil, err
	}
	return report, nil
}

// WriteToFile serializes the report to the provided path, in the format given by its extension.
func (r *Report) WriteToFile(path string) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	b, err := r.Encode(format)
	if err != nil {
		return err
	}
	return utils.WriteFile(path, b)
}

// ReadFromFile reads a report from the provided path, in the format given by its extension.
func ReadFromFile(path string) (*Report, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return Decode(b, format)
}
