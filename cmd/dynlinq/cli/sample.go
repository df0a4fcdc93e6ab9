package cli

import (
	"os"
	"reflect"

	"gopkg.in/yaml.v3"
)

// Record is the demo struct `eval`/`dump` register as the type of "it":
// a small, representative mix of a string, a numeric, a bool, and a
// nested slice, enough to exercise member access, relational/additive
// operators, and aggregate calls like Tags.Any(it == "go") from the
// command line.
type Record struct {
	Name   string
	Age    int32
	Active bool
	Score  float64
	Tags   []string
}

// defaultRecord is the value eval evaluates against when --data is not
// given.
var defaultRecord = Record{
	Name:   "Ada",
	Age:    36,
	Active: true,
	Score:  92.5,
	Tags:   []string{"go", "math", "logic"},
}

var recordType = reflect.TypeOf(Record{})

// loadRecord reads a YAML fixture file into a Record, or returns
// defaultRecord if path is empty.
func loadRecord(path string) (Record, error) {
	if path == "" {
		return defaultRecord, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path from user CLI arg
	if err != nil {
		return Record{}, err
	}
	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Record{}, err
	}
	return r, nil
}
