// Package sqlbind builds parameterized SQL queries from plain SQL templates.
/*

SQL Templates

sqlbind lets you write SQL as text and bind every value as a parameter:
- Values are bound via Binder methods that return @name placeholders,
  so they never become a part of SQL text,
- Named parameters may be reused within a query, binding the same name
  to different values is an error,
- Queries can be concatenated, generated parameters are renumbered
  to keep names unique,
- Template lines may be indented in source code, the margin character
  marks the start of every line,
- Placeholders can be rewritten for PostgreSQL ($1, $2, etc) and MySQL (?).

The lint subpackage checks source files to make sure every value
is interpolated into SQL templates via a binding call.
*/
package sqlbind
