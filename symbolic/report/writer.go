package report

import (
	"bytes"
	"io"
	"path/filepath"

	"github.com/crytic/symgen/logging"
	"github.com/crytic/symgen/logging/colors"
	"github.com/crytic/symgen/symbolic/config"
	"github.com/crytic/symgen/utils"
	"github.com/pkg/errors"
)

// Output formats which are not serialized reports.
const (
	FormatText   = "text"
	FormatGoTest = "gotest"
	FormatCases  = "cases"
)

// reportFileName is the name, without extension, of the report files written to the output directory.
const reportFileName = "report"

// Write writes the report in every format of the output configuration. The text format is printed to the console, and
// also written to the output directory if one is set. Returns the paths of the files written.
func Write(r *Report, output config.OutputConfig, console io.Writer) ([]string, error) {
	logger := logging.GlobalLogger.NewSubLogger("service", logging.REPORT_SERVICE)
	written := make([]string, 0)

	for _, format := range output.Formats {
		switch format {
		case FormatText:
			var buf bytes.Buffer
			if err := WriteText(&buf, r); err != nil {
				return written, err
			}
			if console != nil {
				if _, err := console.Write(buf.Bytes()); err != nil {
					return written, errors.WithStack(err)
				}
			}
			if output.Directory != "" {
				path := filepath.Join(output.Directory, reportFileName+".txt")
				if err := utils.WriteFile(path, buf.Bytes()); err != nil {
					return written, err
				}
				written = append(written, path)
			}
		case FormatJSON, FormatYAML, FormatCBOR:
			path := filepath.Join(output.Directory, reportFileName+"."+format)
			if err := r.WriteToFile(path); err != nil {
				return written, errors.Wrapf(err, "could not write the %v report", format)
			}
			written = append(written, path)
		case FormatGoTest:
			path, err := WriteGoTest(output.Directory, r)
			if err != nil {
				return written, err
			}
			written = append(written, path)
		case FormatCases:
			paths, err := WriteCases(filepath.Join(output.Directory, CasesDirectoryName), r)
			if err != nil {
				return written, errors.Wrap(err, "could not write the test case files")
			}
			written = append(written, paths...)
		default:
			return written, errors.Errorf("unsupported output format %q", format)
		}
	}

	for _, path := range written {
		logger.Info("Wrote ", colors.Bold, path, colors.Reset)
	}
	return written, nil
}
