package logentry

import (
	"github.com/kailas-cloud/logdex/internal/domain/index/field"
	"github.com/kailas-cloud/logdex/internal/domain/index/schema"
)

// Entity is the entity kind of activity log documents.
const Entity = "log"

// Field roles of a log document.
const (
	RoleKey       schema.Role = "KEY"
	RoleType      schema.Role = "TYPE"
	RoleDate      schema.Role = "DATE"
	RoleExecution schema.Role = "EXECUTION"
	RoleAuthor    schema.Role = "AUTHOR"
	RoleDetails   schema.Role = "DETAILS"
	RoleMessage   schema.Role = "MESSAGE"
)

// NewSchema builds the log field registry targeting indexName (defaults to Entity).
// Call it once at startup and share the result.
func NewSchema(indexName string) (*schema.Schema, error) {
	b := schema.NewBuilder(Entity)
	if indexName != "" {
		b.Index(indexName)
	}
	return b.
		AddSortableAndSearchable(RoleKey, "key", field.String).
		AddSortable(RoleType, "type", field.String).
		AddSortable(RoleDate, "date", field.Date).
		Add(RoleExecution, "executionTime", field.Numeric).
		AddSearchable(RoleAuthor, "author", field.String).
		AddSearchable(RoleDetails, "details", field.Object).
		AddSearchable(RoleMessage, "message", field.String).
		Require(RoleKey, RoleType, RoleDate, RoleExecution, RoleAuthor, RoleDetails, RoleMessage).
		Build()
}
