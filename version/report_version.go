package version

import (
	"github.com/Masterminds/semver"
	"github.com/pkg/errors"
)

// ReportSchemaVersion is the version of the report format written by this build.
const ReportSchemaVersion = "1.0.0"

// ReportSchemaConstraint describes the report format versions this build can read.
const ReportSchemaConstraint = "^1.0.0"

// CheckReportCompatibility returns an error if a report written with the given schema version cannot be read by this
// build.
func CheckReportCompatibility(schemaVersion string) error {
	v, err := semver.NewVersion(schemaVersion)
	if err != nil {
		return errors.Wrapf(err, "report schema version %q is not a valid semantic version", schemaVersion)
	}

	constraint, err := semver.NewConstraint(ReportSchemaConstraint)
	if err != nil {
		return errors.WithStack(err)
	}

	if !constraint.Check(v) {
		return errors.Errorf("report schema version %v is not supported, expected a version matching %v", v, ReportSchemaConstraint)
	}
	return nil
}
