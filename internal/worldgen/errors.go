package worldgen

import "fmt"

// SchemaViolation reports a parsed payload that fails a count, uniqueness
// or format constraint. It identifies the offending field and constraint.
type SchemaViolation struct {
	Field      string
	Constraint string
}

func (e *SchemaViolation) Error() string {
	return fmt.Sprintf("schema violation: field %q: %s", e.Field, e.Constraint)
}

// ExtractionError means raw model output stayed unparseable after the one
// repair attempt. It is terminal for the stage, not the whole pipeline.
type ExtractionError struct {
	Schema string
	Raw    string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("unparseable %s output after repair: %v", e.Schema, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ServiceError wraps a transport or availability failure of the completion
// service. It is never swallowed: a missing stage output makes the rest of
// the pipeline impossible.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("completion service failed during %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IntegrityError reports an item referencing a mechanic that does not exist
// in the assembled world. The schema alone cannot catch this, so assembly
// runs an explicit referential check.
type IntegrityError struct {
	Item     string
	Mechanic string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("item %q references unknown mechanic %q", e.Item, e.Mechanic)
}

// StageError carries the stage name and, where available, the offending raw
// model output up to the pipeline caller.
type StageError struct {
	Stage Stage
	Raw   string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
