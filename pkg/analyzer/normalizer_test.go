package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_LineComments(t *testing.T) {
	sql := "SELECT * FROM t -- comment with JOIN"
	cleaned := Normalize(sql)
	assert.NotContains(t, cleaned, "JOIN")
	assert.Contains(t, cleaned, "SELECT")
}

func TestNormalize_LineCommentKeepsNewline(t *testing.T) {
	sql := "SELECT * FROM t -- GROUP BY hidden\nWHERE id = 1"
	cleaned := Normalize(sql)
	assert.NotContains(t, cleaned, "GROUP BY")
	assert.Contains(t, cleaned, "\nWHERE id = 1")
	assert.Equal(t, strings.Count(sql, "\n"), strings.Count(cleaned, "\n"))
}

func TestNormalize_BlockComments(t *testing.T) {
	sql := "SELECT * /* comment with GROUP BY */ FROM t"
	cleaned := Normalize(sql)
	assert.NotContains(t, cleaned, "GROUP BY")
	assert.Contains(t, cleaned, "SELECT")
	assert.Contains(t, cleaned, "FROM t")
}

func TestNormalize_UnterminatedBlockComment(t *testing.T) {
	// Consumes to end of input and contributes no replacement space.
	sql := "SELECT 1 /* never closed ORDER BY"
	cleaned := Normalize(sql)
	assert.Equal(t, "SELECT 1 ", cleaned)
}

func TestNormalize_StringLiterals(t *testing.T) {
	sql := "SELECT 'text with JOIN keyword' FROM t"
	cleaned := Normalize(sql)
	assert.NotContains(t, cleaned, "JOIN")
	assert.Contains(t, cleaned, "SELECT")
	// Literal body is blanked in place, not removed.
	assert.Len(t, cleaned, len(sql))
}

func TestNormalize_MixedQuotes(t *testing.T) {
	sql := `SELECT 'single quote' AND "double quote with GROUP BY" FROM t`
	cleaned := Normalize(sql)
	assert.NotContains(t, cleaned, "GROUP BY")
	assert.Contains(t, cleaned, "SELECT")
}

func TestNormalize_QuoteInsideOtherQuote(t *testing.T) {
	// A double quote inside a single-quoted literal does not open a
	// double-quoted region.
	sql := `SELECT 'it is "quoted"' , name FROM t`
	cleaned := Normalize(sql)
	assert.Contains(t, cleaned, "name FROM t")
}

func TestNormalize_DashNotComment(t *testing.T) {
	sql := "SELECT a - b FROM t"
	assert.Equal(t, sql, Normalize(sql))
}

func TestNormalize_SlashNotComment(t *testing.T) {
	sql := "SELECT a / b FROM t"
	assert.Equal(t, sql, Normalize(sql))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"SELECT * FROM t",
		"SELECT 'JOIN' FROM t -- ORDER BY c",
		"SELECT /* GROUP BY */ 1",
		`SELECT "a", 'b' FROM t /* unterminated`,
		"-- only a comment\n",
		"SELECT 1 --trailing",
	}
	for _, s := range inputs {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
	}
}

func TestNormalize_TotalOverArbitraryInput(t *testing.T) {
	// No failure mode, even for garbage.
	inputs := []string{"'''", `"""`, "--", "/*", "*/", "((((", "\x00\xff"}
	for _, s := range inputs {
		_ = Normalize(s)
	}
}
