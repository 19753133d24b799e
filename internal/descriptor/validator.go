package descriptor

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/composer.schema.json
var schemaBytes []byte

const schemaURL = "composer.schema.json"

var composerSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("reading embedded schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// ValidationResult is the outcome of checking a descriptor against the schema.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue is one schema violation.
type ValidationIssue struct {
	Path    string // JSON pointer into the descriptor, "" for the root
	Message string
	Keyword string
}

// String formats the issue as "<path>: <message>".
func (i ValidationIssue) String() string {
	loc := i.Path
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + i.Message
}

// Validate checks a composer.json document against the embedded schema.
// Violations are reported in the result; the error is for unreadable
// input or a broken schema.
func Validate(data []byte) (*ValidationResult, error) {
	schema, err := composerSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing descriptor: %w", err)
	}

	var ve *jsonschema.ValidationError
	switch err := schema.Validate(inst); {
	case err == nil:
		return &ValidationResult{Valid: true}, nil
	case !errors.As(err, &ve):
		return nil, fmt.Errorf("validating descriptor: %w", err)
	}

	c := issueCollector{printer: message.NewPrinter(language.English), seen: make(map[ValidationIssue]bool)}
	c.walk(ve)
	if len(c.issues) == 0 {
		c.issues = append(c.issues, ValidationIssue{Message: ve.Error()})
	}
	slices.SortStableFunc(c.issues, func(a, b ValidationIssue) int { return strings.Compare(a.Path, b.Path) })
	return &ValidationResult{Issues: c.issues}, nil
}

// ValidateFile reads path and validates it.
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Validate(data)
}

// issueCollector flattens a validation error tree into its distinct leaves.
type issueCollector struct {
	printer *message.Printer
	seen    map[ValidationIssue]bool
	issues  []ValidationIssue
}

func (c *issueCollector) walk(ve *jsonschema.ValidationError) {
	for _, cause := range ve.Causes {
		c.walk(cause)
	}
	if len(ve.Causes) > 0 || ve.ErrorKind == nil {
		return
	}

	kw := ve.ErrorKind.KeywordPath()
	if len(kw) == 0 {
		return
	}
	issue := ValidationIssue{Keyword: kw[len(kw)-1], Message: ve.ErrorKind.LocalizedString(c.printer)}
	switch issue.Keyword {
	case "oneOf", "allOf", "anyOf", "$ref":
		return
	}
	if len(ve.InstanceLocation) > 0 {
		issue.Path = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	if !c.seen[issue] {
		c.seen[issue] = true
		c.issues = append(c.issues, issue)
	}
}
