package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/dusk-indust/transcreate/internal/plan"
)

// runValidate checks a plan file and prints one line per violation.
func runValidate(args []string) error {
	var kindName, file string

	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.StringVar(&kindName, "kind", "", "plan kind: transcreation or edit (detected when empty)")
	fs.StringVar(&file, "file", "", "path to the plan JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if file == "" && fs.NArg() > 0 {
		file = fs.Arg(0)
	}
	if file == "" {
		return fmt.Errorf("usage: transcreate validate [-kind transcreation|edit] -file plan.json")
	}

	var kind plan.Kind
	if kindName != "" {
		k, err := plan.ParseKind(kindName)
		if err != nil {
			return err
		}
		kind = k
	}

	v, err := plan.LoadFile(kind, file)
	var se *plan.SchemaError
	if errors.As(err, &se) {
		fmt.Printf("%s: invalid %s plan\n", file, se.Kind)
		for _, fe := range se.Violations {
			fmt.Printf("  - %s\n", fe.Error())
		}
		return fmt.Errorf("%d schema violation(s) in %s", len(se.Violations), file)
	}
	if err != nil {
		return err
	}

	switch p := v.(type) {
	case plan.TranscreationPlan:
		fmt.Printf("%s: valid transcreation plan (%d transformations, %d preservations)\n",
			file, len(p.Transformations), len(p.Preservations))
	case plan.EditPlan:
		fmt.Printf("%s: valid edit plan (%d replacements, %d text edits)\n",
			file, len(p.Replace), len(p.EditText))
	}
	return nil
}

// runSchema prints the JSON Schema of a plan kind.
func runSchema(args []string) error {
	var kindName string

	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	fs.StringVar(&kindName, "kind", string(plan.KindTranscreation), "plan kind: transcreation or edit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	kind, err := plan.ParseKind(kindName)
	if err != nil {
		return err
	}
	schema, err := plan.Schema(kind)
	if err != nil {
		return err
	}
	out, err := plan.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}
