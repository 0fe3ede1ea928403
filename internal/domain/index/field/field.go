package field

import (
	"fmt"
	"regexp"
)

// Type is the value type of an index field.
type Type string

// Field type constants.
const (
	String  Type = "string"
	Numeric Type = "numeric"
	Date    Type = "date"
	// Object is a nested mapping stored under a single field.
	Object Type = "object"
)

// IsValid checks if the field type is supported.
func (t Type) IsValid() bool {
	switch t {
	case String, Numeric, Date, Object:
		return true
	}
	return false
}

// Capability is a query capability flag of a field.
type Capability uint8

// Capability flags.
const (
	// Searchable fields can be filtered on.
	Searchable Capability = 1 << iota
	// Sortable fields can be ordered by.
	Sortable
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Field is an immutable value object describing one index field.
type Field struct {
	name      string
	fieldType Type
	caps      Capability
}

// New validates and creates a Field.
// Name must be non-empty, max 64 chars, alphanumeric with '_', '.', '-'.
func New(name string, ft Type, caps ...Capability) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if len(name) > 64 {
		return Field{}, fmt.Errorf("field name %q too long (max 64)", name)
	}
	if !nameRegex.MatchString(name) {
		return Field{}, fmt.Errorf("field name %q contains invalid characters", name)
	}
	if !ft.IsValid() {
		return Field{}, fmt.Errorf("invalid field type %q for %q", ft, name)
	}
	var c Capability
	for _, cp := range caps {
		c |= cp
	}
	return Field{name: name, fieldType: ft, caps: c}, nil
}

// Name returns the field name used as the document key.
func (f Field) Name() string { return f.name }

// FieldType returns the field value type.
func (f Field) FieldType() Type { return f.fieldType }

// IsSearchable reports whether the engine may filter on the field.
func (f Field) IsSearchable() bool { return f.caps&Searchable != 0 }

// IsSortable reports whether the engine may order by the field.
func (f Field) IsSortable() bool { return f.caps&Sortable != 0 }

// String returns a debug representation, e.g. "key:string[searchable,sortable]".
func (f Field) String() string {
	s := f.name + ":" + string(f.fieldType)
	switch {
	case f.IsSearchable() && f.IsSortable():
		s += "[searchable,sortable]"
	case f.IsSearchable():
		s += "[searchable]"
	case f.IsSortable():
		s += "[sortable]"
	}
	return s
}
