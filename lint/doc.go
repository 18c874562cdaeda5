/*
Package lint checks that SQL templates in source code interpolate
values only via parameter binding calls.

A SQL-building context starts with the call that builds a templated query,

	sql(() => $@"
	    |SELECT balance
	    |  FROM accounts
	    | WHERE id = {p(accountId)}")

Within that context every interpolation hole of an interpolated string
literal must be a call to one of the binding functions: {p(...)} is fine,
{accountId} or {s.Name} is reported as a Finding.

The scanner does not parse the host language. It recognizes the opener
of the build call, ignoring whitespace, and four kinds of string literals:
plain "...", interpolated $"...", verbatim @"..." and verbatim interpolated
$@"..." or @$"...". Escaped braces {{ are skipped.
*/
package lint
