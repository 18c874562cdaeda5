package lint_test

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leporo/sqlbind/lint"
)

const codeWithError = `
[Test]
public void SqlQuery_ShouldUseNamedParameters()
{
    var accountId = (777, "account_id");

    var query = sql(() => $@"
        |SELECT event_time, balance
        |  FROM charges
        | WHERE account_id = {p(accountId)}
        | UNION ALL
        |SELECT event_time, balance
        |  FROM withdraws
        | WHERE account_id = {accountId}");
`

func TestValidate(t *testing.T) {
	ok, findings, err := lint.Validate(codeWithError)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []lint.Finding{{Line: 14, Position: 30}}, findings)
	assert.Equal(t, "14:30", findings[0].String())
}

func TestValidateHole(t *testing.T) {
	code := "sql(() => $@\"\n    |SELECT x WHERE id = {accountId}\");"
	ok, findings, err := lint.Validate(code)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []lint.Finding{{Line: 2, Position: 26}}, findings)

	ok, findings, err = lint.Validate(strings.Replace(code, "{accountId}", "{p(accountId)}", 1))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, findings)
}

func TestValidateCases(t *testing.T) {
	for _, tc := range []struct {
		name     string
		code     string
		findings []lint.Finding
	}{
		{
			name:     "verbatim interpolated reversed prefix",
			code:     `sql(() => @$"SELECT {id}");`,
			findings: []lint.Finding{{Line: 1, Position: 21}},
		},
		{
			name:     "plain interpolated",
			code:     `sql(() => $"SELECT {p(id)}, {s(name)}, {id}");`,
			findings: []lint.Finding{{Line: 1, Position: 40}},
		},
		{
			name:     "binder initial without call",
			code:     `sql(() => $"LIMIT {pageSize}");`,
			findings: []lint.Finding{{Line: 1, Position: 20}},
		},
		{
			name: "escaped braces",
			code: `sql(() => $"SELECT '{{json}}', {p(id)}");`,
		},
		{
			name: "not interpolated",
			code: `sql(() => "SELECT {id}" + @"{name}");`,
		},
		{
			name: "outside of context",
			code: `var s = $"Hello {name}"; var q = $@"{id}";`,
		},
		{
			name:     "whitespace in opener",
			code:     "sql ( ( ) =>\n\t$\"SELECT {id}\");",
			findings: []lint.Finding{{Line: 2, Position: 11}},
		},
		{
			name:     "doubled quotes in verbatim",
			code:     `sql(() => $@"SELECT ""{id}"" FROM t WHERE x = {p(x)}");`,
			findings: []lint.Finding{{Line: 1, Position: 23}},
		},
		{
			name:     "escaped quote in plain",
			code:     `sql(() => $"SELECT \"{id}\", '\\' {p(x)} {y}");`,
			findings: []lint.Finding{{Line: 1, Position: 22}, {Line: 1, Position: 42}},
		},
		{
			name:     "empty literal",
			code:     `sql(() => $"" + $"{p(a)}" + "" + $"{b}");`,
			findings: []lint.Finding{{Line: 1, Position: 36}},
		},
		{
			name: "literal does not open another literal",
			code: `sql(() => "@" + "$" + "x {y}");`,
		},
		{
			name:     "multi-byte characters",
			code:     `sql(() => $"SELECT 'äöü' {id}");`,
			findings: []lint.Finding{{Line: 1, Position: 26}},
		},
		{
			name:     "parenthesis in char literal",
			code:     `sql(() => c == ')' ? $"SELECT {raw}" : "");`,
			findings: []lint.Finding{{Line: 1, Position: 31}},
		},
		{
			name:     "quotes in char literals",
			code:     `sql(() => c == '"' || c == '\'' ? $"{raw}" : "");`,
			findings: []lint.Finding{{Line: 1, Position: 37}},
		},
		{
			name:     "parenthesis in block comment",
			code:     `sql(() => $"{p(a)}" /* ) */ + $"{b}");`,
			findings: []lint.Finding{{Line: 1, Position: 33}},
		},
		{
			name:     "line comments",
			code:     "sql(() => $\"{p(a)}\" // (\n); var q = sql(() => $\"{c}\"); // \"{d}\"",
			findings: []lint.Finding{{Line: 2, Position: 24}},
		},
		{
			name:     "division",
			code:     `sql(() => $"{p(a)}" / 2 + $"{b}");`,
			findings: []lint.Finding{{Line: 1, Position: 29}},
		},
		{
			name:     "several lines",
			code:     "sql(() => $@\"\n|A {a}\n|B {p(b)}\n|C {c}\");",
			findings: []lint.Finding{{Line: 2, Position: 4}, {Line: 4, Position: 4}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ok, findings, err := lint.Validate(tc.code)
			require.NoError(t, err)
			assert.Equal(t, len(tc.findings) == 0, ok)
			assert.Equal(t, tc.findings, findings)
		})
	}
}

func TestContextScope(t *testing.T) {
	code := `
var q = sql(() => $"SELECT {p(id)}");
var s = $"Hello {name}";
var q2 = sql(() => $"SELECT {p(id)}");`

	ok, findings, err := lint.Validate(code)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, findings)

	sticky := lint.Syntax{Sticky: true}
	_, _, err = sticky.Validate(code)
	require.ErrorIs(t, err, lint.ErrUnexpectedOpener)
	var scanErr *lint.ScanError
	require.ErrorAs(t, err, &scanErr)
	assert.Equal(t, 4, scanErr.Line)
	assert.Equal(t, "4:18: lint: unexpected SQL context opener", err.Error())

	ok, findings, err = sticky.Validate(code[:strings.LastIndex(code, "\n")])
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []lint.Finding{{Line: 3, Position: 17}}, findings)
}

func TestContextClosedAfterCharLiteral(t *testing.T) {
	code := `var a = sql(() => $"SELECT {p(x)}" + (c == '(' ? "" : ""));
var b = sql(() => $"SELECT {y}");`

	ok, findings, err := lint.Validate(code)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []lint.Finding{{Line: 2, Position: 28}}, findings)
}

func TestNestedOpener(t *testing.T) {
	_, _, err := lint.Validate(`sql(() => sql(() => $"{p(id)}"));`)
	assert.ErrorIs(t, err, lint.ErrUnexpectedOpener)
}

func TestCustomSyntax(t *testing.T) {
	syntax := lint.Syntax{Opener: "Sql.Build(()=>", Binders: "b"}
	code := `Sql.Build(() => $"SELECT {b(id)}, {p(name)}"); sql(() => $"{x}");`
	ok, findings, err := syntax.Validate(code)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []lint.Finding{{Line: 1, Position: 35}}, findings)
}

func TestInvalidSyntax(t *testing.T) {
	for _, syntax := range []lint.Syntax{
		{Opener: "sql (", Binders: "p"},
		{Opener: `sql("`, Binders: "p"},
		{Opener: "sql(", Binders: "p("},
	} {
		_, _, err := syntax.Validate("")
		assert.ErrorIs(t, err, lint.ErrInvalidSyntax)
		assert.ErrorIs(t, syntax.Check(), lint.ErrInvalidSyntax)
	}
	assert.NoError(t, lint.Syntax{}.Check())
}

func TestValidateReaderError(t *testing.T) {
	failure := errors.New("read failed")
	r := iotest.DataErrReader(iotest.ErrReader(failure))
	ok, findings, err := lint.ValidateReader(r)
	assert.ErrorIs(t, err, failure)
	assert.False(t, ok)
	assert.Nil(t, findings)

	ok, _, err = lint.ValidateReader(strings.NewReader(""))
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestDeterministic(t *testing.T) {
	code := strings.Repeat(codeWithError, 3)
	_, first, err := lint.Validate(code)
	require.NoError(t, err)
	require.Len(t, first, 3)
	for i := 0; i < 5; i++ {
		_, findings, err := lint.Validate(code)
		require.NoError(t, err)
		assert.Equal(t, first, findings)
	}
}
