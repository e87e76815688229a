// Copyright 2020 DataStax
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cqlclient

import (
	"regexp"
	"strings"
)

// bareIdentifier matches identifiers CQL accepts unquoted: lower-case,
// starting with a letter or underscore.
var bareIdentifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// QuoteIdentifier returns ident ready to splice into CQL text as a
// keyspace, table, or column name. Identifiers already matching CQL's bare
// form are returned unchanged; anything else is wrapped in double quotes
// with embedded double quotes doubled, per CQL's escaping rule.
func QuoteIdentifier(ident string) string {
	if bareIdentifier.MatchString(ident) {
		return ident
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// QuoteValue returns value as a single-quoted CQL string literal, with
// embedded single quotes doubled. Prefer bind parameters over string
// literals wherever the statement is not fully static; this exists for the
// literals that must be spliced into the CQL text itself. Identifiers, such
// as the keyspace name in a USE statement, go through QuoteIdentifier.
func QuoteValue(value string) string {
	return `'` + strings.ReplaceAll(value, `'`, `''`) + `'`
}
