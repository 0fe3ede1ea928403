// Package schema declares the set of index fields of one entity kind.
//
// A Schema is assembled once at startup by an explicit list of Builder calls and
// is read-only afterwards, so it can be shared by any number of goroutines.
package schema

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/logdex/internal/domain"
	"github.com/kailas-cloud/logdex/internal/domain/index/field"
)

// Role is the logical role of a field within an entity kind (e.g. KEY, DATE).
type Role string

// ConfigError reports every problem found while building a schema.
type ConfigError struct {
	Entity   string
	Problems []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: schema %q: %s", domain.ErrInvalidSchema, e.Entity, strings.Join(e.Problems, "; "))
}

func (e *ConfigError) Unwrap() error { return domain.ErrInvalidSchema }

// Schema is the immutable field registry of one entity kind.
type Schema struct {
	entity string
	index  string
	roles  []Role
	fields []field.Field
	byRole map[Role]int
}

// Entity returns the entity kind the schema describes.
func (s *Schema) Entity() string { return s.entity }

// IndexName returns the name of the search index the documents are written to.
func (s *Schema) IndexName() string { return s.index }

// Len returns the number of registered fields.
func (s *Schema) Len() int { return len(s.fields) }

// Fields returns all descriptors in registration order.
func (s *Schema) Fields() []field.Field {
	out := make([]field.Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Roles returns all roles in registration order.
func (s *Schema) Roles() []Role {
	out := make([]Role, len(s.roles))
	copy(out, s.roles)
	return out
}

// Lookup returns the descriptor registered for role.
func (s *Schema) Lookup(role Role) (field.Field, bool) {
	i, ok := s.byRole[role]
	if !ok {
		return field.Field{}, false
	}
	return s.fields[i], true
}

// Name returns the document key of the field registered for role.
// It panics on an unregistered role: callers only pass roles declared next to the schema.
func (s *Schema) Name(role Role) string {
	f, ok := s.Lookup(role)
	if !ok {
		panic(fmt.Sprintf("schema %q: role %q is not registered", s.entity, role))
	}
	return f.Name()
}

// Builder assembles a Schema. Problems are collected and reported together by Build.
type Builder struct {
	entity   string
	index    string
	roles    []Role
	fields   []field.Field
	required []Role
	rejected map[Role]bool
	problems []string
}

// NewBuilder starts a schema for the given entity kind. The index name defaults to the entity.
func NewBuilder(entity string) *Builder {
	return &Builder{entity: entity, index: entity}
}

// Index overrides the target index name.
func (b *Builder) Index(name string) *Builder {
	b.index = name
	return b
}

// Add registers a field without query capabilities.
func (b *Builder) Add(role Role, name string, ft field.Type) *Builder {
	return b.add(role, name, ft)
}

// AddSortable registers a field the engine can order by.
func (b *Builder) AddSortable(role Role, name string, ft field.Type) *Builder {
	return b.add(role, name, ft, field.Sortable)
}

// AddSearchable registers a field the engine can filter on.
func (b *Builder) AddSearchable(role Role, name string, ft field.Type) *Builder {
	return b.add(role, name, ft, field.Searchable)
}

// AddSortableAndSearchable registers a field with both capabilities.
func (b *Builder) AddSortableAndSearchable(role Role, name string, ft field.Type) *Builder {
	return b.add(role, name, ft, field.Searchable, field.Sortable)
}

// Require marks roles that must be registered by the time Build runs.
func (b *Builder) Require(roles ...Role) *Builder {
	b.required = append(b.required, roles...)
	return b
}

func (b *Builder) add(role Role, name string, ft field.Type, caps ...field.Capability) *Builder {
	if role == "" {
		b.problems = append(b.problems, fmt.Sprintf("empty role for field %q", name))
		return b
	}
	f, err := field.New(name, ft, caps...)
	if err != nil {
		b.problems = append(b.problems, fmt.Sprintf("role %s: %v", role, err))
		if b.rejected == nil {
			b.rejected = make(map[Role]bool)
		}
		b.rejected[role] = true
		return b
	}
	b.roles = append(b.roles, role)
	b.fields = append(b.fields, f)
	return b
}

// Build validates and returns the schema.
func (b *Builder) Build() (*Schema, error) {
	problems := append([]string(nil), b.problems...)

	if b.entity == "" {
		problems = append(problems, "entity is required")
	}
	if b.index == "" {
		problems = append(problems, "index name is required")
	}

	byRole := make(map[Role]int, len(b.roles))
	names := make(map[string]Role, len(b.fields))
	for i, f := range b.fields {
		role := b.roles[i]
		if _, dup := byRole[role]; dup {
			problems = append(problems, fmt.Sprintf("duplicate role %s", role))
			continue
		}
		if other, dup := names[f.Name()]; dup {
			problems = append(problems, fmt.Sprintf("duplicate field name %q (roles %s and %s)", f.Name(), other, role))
			continue
		}
		byRole[role] = i
		names[f.Name()] = role
	}

	// A role whose descriptor was rejected is already reported.
	for _, role := range b.required {
		if _, ok := byRole[role]; !ok && !b.rejected[role] {
			problems = append(problems, fmt.Sprintf("missing required role %s", role))
		}
	}

	if len(problems) > 0 {
		return nil, &ConfigError{Entity: b.entity, Problems: problems}
	}

	s := &Schema{
		entity: b.entity,
		index:  b.index,
		roles:  make([]Role, len(b.roles)),
		fields: make([]field.Field, len(b.fields)),
		byRole: byRole,
	}
	copy(s.roles, b.roles)
	copy(s.fields, b.fields)
	return s, nil
}

// MustBuild calls Build and panics on error.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
