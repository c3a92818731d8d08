package utils

import "strings"

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds a LIKE pattern matching text anywhere in a column.
// Wildcards typed by the user match literally, so the query must say
// ESCAPE '\'.
func ContainsPattern(text string) string {
	return "%" + likeReplacer.Replace(text) + "%"
}
