package report

import (
	"bytes"
	"fmt"
	"go/format"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/crytic/symgen/symbolic/frontend/golang"
	"github.com/crytic/symgen/utils"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// reservedFieldNames are the table fields the generated test declares besides the parameters.
var reservedFieldNames = []string{"name", "want", "_"}

// goTestTemplate renders a table-driven test calling the target with every test case. Each case holds a want function
// taking the inputs, whose body is the return statement of the recorded outcome. A nil want marks a bare return,
// which only exercises the call.
var goTestTemplate = template.Must(template.New("gotest").Parse(`// Code generated by symgen {{.Version}}. DO NOT EDIT.

package {{.Package}}

import (
{{- if .Results}}
	"reflect"
{{- end}}
	"testing"
)

// {{.TestName}} calls {{.Function}} with inputs driving it down each of its paths.
func {{.TestName}}(t *testing.T) {
	testCases := []struct {
		name string
{{- range .Params}}
		{{.Name}} {{.Type}}
{{- end}}
{{- if .Results}}
		want func({{.Signature}}) ({{.Results}})
{{- end}}
	}{
{{- range .Cases}}
		{
			name: {{printf "%q" .Name}},
{{- range .Inputs}}
			{{.Name}}: {{.Value}},
{{- end}}
{{- if $.Results}}
{{- if .Want}}
			want: func({{$.Signature}}) ({{$.Results}}) { return {{.Want}} },
{{- end}}
{{- end}}
		},
{{- end}}
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
{{- if .Results}}
			{{.Got}} := {{.Function}}({{.Args}})
			if tc.want == nil {
				return
			}
			{{.Want}} := tc.want({{.Args}})
{{- range .Compare}}
			if !reflect.DeepEqual({{.Got}}, {{.Want}}) {
				t.Errorf("{{.Label}}: got %v, want %v", {{.Got}}, {{.Want}})
			}
{{- end}}
{{- else}}
			{{.Function}}({{.Args}})
{{- end}}
		})
	}
}
`))

type goTestData struct {
	Version   string
	Package   string
	Function  string
	TestName  string
	Params    []Param
	Signature string
	Results   string
	Args      string
	Got       string
	Want      string
	Compare   []goTestCompare
	Cases     []goTestCase
}

type goTestCompare struct {
	Label string
	Got   string
	Want  string
}

type goTestCase struct {
	Name   string
	Inputs []goTestInput
	Want   string
}

type goTestInput struct {
	Name  string
	Value string
}

// GoTestFileName returns the name of the test file generated for a target function.
func GoTestFileName(function string) string {
	return strings.ToLower(function) + "_symgen_test.go"
}

// RenderGoTest renders the test cases of a report on a Go target as a gofmt'ed table-driven test in the target's
// package.
func RenderGoTest(r *Report) ([]byte, error) {
	if r.Target.Language != golang.Language {
		return nil, errors.Errorf("go tests can only be generated for go targets, not %v", r.Target.Language)
	}
	if r.Target.Package == "" {
		return nil, errors.Errorf("the package of %v is unknown", r.Target.Function)
	}

	data := goTestData{
		Version:  r.GeneratorVersion,
		Package:  r.Target.Package,
		Function: r.Target.Function,
		TestName: "Test" + strings.ToUpper(r.Target.Function[:1]) + r.Target.Function[1:] + "Symgen",
		Params:   r.Target.Params,
		Results:  strings.Join(r.Target.ResultTypes, ", "),
	}

	signature := make([]string, len(r.Target.Params))
	args := make([]string, len(r.Target.Params))
	for i, param := range r.Target.Params {
		if slices.Contains(reservedFieldNames, param.Name) {
			return nil, errors.Errorf("cannot generate a go test for %v: parameter name %q is reserved", r.Target.Function, param.Name)
		}
		signature[i] = param.Name + " " + param.Type
		args[i] = "tc." + param.Name
	}
	data.Signature = strings.Join(signature, ", ")
	data.Args = strings.Join(args, ", ")

	got := make([]string, len(r.Target.ResultTypes))
	want := make([]string, len(r.Target.ResultTypes))
	for i := range r.Target.ResultTypes {
		got[i], want[i] = fmt.Sprintf("got%d", i), fmt.Sprintf("want%d", i)
		label := "result"
		if len(got) > 1 {
			label = fmt.Sprintf("result %d", i)
		}
		data.Compare = append(data.Compare, goTestCompare{Label: label, Got: got[i], Want: want[i]})
	}
	data.Got, data.Want = strings.Join(got, ", "), strings.Join(want, ", ")

	for _, testCase := range r.TestCases {
		goCase := goTestCase{Name: fmt.Sprintf("path #%d: %s", testCase.PathID, testCase.InputTuple())}
		for _, input := range testCase.Inputs {
			goCase.Inputs = append(goCase.Inputs, goTestInput{Name: input.Name, Value: input.Value.String()})
		}
		if testCase.Outcome != "return" {
			goCase.Want = testCase.Outcome
		}
		data.Cases = append(data.Cases, goCase)
	}

	var buf bytes.Buffer
	if err := goTestTemplate.Execute(&buf, data); err != nil {
		return nil, errors.WithStack(err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "the go test generated for %v is not valid go", r.Target.Function)
	}
	return src, nil
}

// WriteGoTest renders the go test of a report into the provided directory, and returns the path written.
func WriteGoTest(directory string, r *Report) (string, error) {
	src, err := RenderGoTest(r)
	if err != nil {
		return "", err
	}
	path := filepath.Join(directory, GoTestFileName(r.Target.Function))
	if err = utils.WriteFile(path, src); err != nil {
		return "", err
	}
	return path, nil
}
