package proto

import "fmt"

// DecodeError reports structurally malformed bytes: truncation, bad magic,
// trailing garbage. The offset points at the violating position.
type DecodeError struct {
	Offset int
	Msg    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("proto: malformed message at offset %d: %s", e.Offset, e.Msg)
}

// SchemaViolation reports a well-formed message that violates the protocol
// contract: unknown version, out-of-range values, dangling references.
type SchemaViolation struct {
	Field string
	Msg   string
}

func (e *SchemaViolation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("proto: schema violation: %s", e.Msg)
	}
	return fmt.Sprintf("proto: schema violation in %s: %s", e.Field, e.Msg)
}

func decodeErrf(off int, format string, args ...interface{}) error {
	return &DecodeError{Offset: off, Msg: fmt.Sprintf(format, args...)}
}

func schemaErrf(field, format string, args ...interface{}) error {
	return &SchemaViolation{Field: field, Msg: fmt.Sprintf(format, args...)}
}
