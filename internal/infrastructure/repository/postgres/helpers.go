// Package postgres persists ingested match data into the lol schema with
// sqlx. Statements are generated through the querybuilder package; conflict
// handling is per table and deliberately narrow so re-ingesting a match
// never clobbers columns it should not.
package postgres

import "strings"

// jsonOrNull maps an empty document string to SQL NULL so jsonb columns
// stay NULL when the provider omitted the field.
func jsonOrNull(doc string) *string {
	if strings.TrimSpace(doc) == "" {
		return nil
	}
	return &doc
}
