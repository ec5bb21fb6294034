package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/talentforge/candidate-os/pkg/apperror"
)

// The translator's output is untrusted input. ValidatePlan is the safety
// gate between it and the store: only a single read-only SELECT whose every
// identifier resolves inside the schema description may pass.

var deniedVerbs = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|truncate|grant|revoke|create|merge|copy|vacuum|call|execute|do|set|comment)\b`)

var identPattern = regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_]*`)

var allowedKeywords = map[string]bool{
	"select": true, "from": true, "where": true, "and": true, "or": true,
	"not": true, "in": true, "like": true, "ilike": true, "between": true,
	"group": true, "by": true, "order": true, "asc": true, "desc": true,
	"limit": true, "offset": true, "join": true, "inner": true, "left": true,
	"right": true, "full": true, "outer": true, "cross": true, "on": true,
	"as": true, "distinct": true, "having": true, "union": true, "all": true,
	"case": true, "when": true, "then": true, "else": true, "end": true,
	"null": true, "is": true, "true": true, "false": true, "with": true,
	"exists": true, "any": true, "some": true, "using": true, "cast": true,
	"interval": true, "nulls": true, "first": true, "last": true,
}

var allowedFunctions = map[string]bool{
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
	"lower": true, "upper": true, "length": true, "coalesce": true,
	"substring": true, "trim": true, "now": true, "abs": true, "round": true,
	"date_part": true, "date_trunc": true, "to_char": true, "unnest": true,
	"array_to_string": true, "array_length": true, "cardinality": true,
}

type token struct {
	text  string
	lower string
	end   int // byte offset just past the token
}

// ValidatePlan checks a candidate query against the schema description and
// returns an executable Plan, or an apperror.ErrQueryRejected error. A
// rejected query is never executed.
func ValidatePlan(raw string, schema SchemaDescription) (Plan, error) {
	sql := strings.TrimSpace(raw)
	if sql == "" {
		return Plan{}, apperror.NewQueryRejected("empty query")
	}

	stripped, err := stripStringLiterals(sql)
	if err != nil {
		return Plan{}, apperror.NewQueryRejected(err.Error())
	}

	if strings.Contains(stripped, "--") || strings.Contains(stripped, "/*") {
		return Plan{}, apperror.NewQueryRejected("comments are not allowed")
	}

	// One statement only. A single trailing semicolon is tolerated.
	stripped = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(stripped), ";"))
	sql = strings.TrimSpace(strings.TrimSuffix(sql, ";"))
	if strings.Contains(stripped, ";") {
		return Plan{}, apperror.NewQueryRejected("multiple statements are not allowed")
	}

	if m := deniedVerbs.FindString(stripped); m != "" {
		return Plan{}, apperror.NewQueryRejected(fmt.Sprintf("forbidden operation %q", strings.ToLower(m)))
	}

	var tokens []token
	for _, loc := range identPattern.FindAllStringIndex(stripped, -1) {
		text := stripped[loc[0]:loc[1]]
		tokens = append(tokens, token{text: text, lower: strings.ToLower(text), end: loc[1]})
	}
	if len(tokens) == 0 {
		return Plan{}, apperror.NewQueryRejected("no statement found")
	}
	if first := tokens[0].lower; first != "select" && first != "with" {
		return Plan{}, apperror.NewQueryRejected("only SELECT statements are allowed")
	}

	tables := schema.TableNames()
	columns := schema.ColumnNames()

	// First pass: collect aliases. Three alias-introducing shapes are
	// recognized: "expr AS name" (name), "name AS (" (a CTE), and a bare
	// identifier directly following a table name in FROM/JOIN.
	aliases := make(map[string]bool)
	for i, tok := range tokens {
		if tok.lower != "as" {
			continue
		}
		if i+1 < len(tokens) {
			aliases[tokens[i+1].lower] = true
		}
		if i > 0 && nextRune(stripped, tok.end) == '(' {
			aliases[tokens[i-1].lower] = true
		}
	}
	for i := 2; i < len(tokens); i++ {
		prev, beforePrev := tokens[i-1].lower, tokens[i-2].lower
		if tables[prev] && (beforePrev == "from" || beforePrev == "join") &&
			!allowedKeywords[tokens[i].lower] {
			aliases[tokens[i].lower] = true
		}
	}

	// Second pass: every identifier must resolve.
	var referenced []string
	seen := make(map[string]bool)
	for i, tok := range tokens {
		if i > 0 {
			prev := tokens[i-1].lower
			if prev == "from" || prev == "join" {
				// The token after FROM/JOIN must be a known table or a
				// declared alias. Derived tables (`FROM (SELECT ...) sub`)
				// fall outside the allowed subset on purpose: they would
				// need a real parser to validate, and rejection is safe.
				if !tables[tok.lower] && !aliases[tok.lower] {
					return Plan{}, apperror.NewQueryRejected(fmt.Sprintf("unknown table %q", tok.text))
				}
				if tables[tok.lower] && !seen[tok.lower] {
					seen[tok.lower] = true
					referenced = append(referenced, tok.lower)
				}
				continue
			}
		}
		if allowedKeywords[tok.lower] || allowedFunctions[tok.lower] ||
			tables[tok.lower] || columns[tok.lower] || aliases[tok.lower] {
			continue
		}
		return Plan{}, apperror.NewQueryRejected(fmt.Sprintf("unknown identifier %q", tok.text))
	}

	return Plan{SQL: sql, Tables: referenced}, nil
}

func nextRune(s string, from int) rune {
	for _, r := range s[from:] {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return r
	}
	return 0
}

// stripStringLiterals blanks single-quoted literals so their contents never
// trip the identifier or verb checks. Doubled quotes inside a literal are
// the usual SQL escape.
func stripStringLiterals(sql string) (string, error) {
	var b strings.Builder
	inLiteral := false
	runes := []rune(sql)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '\'' {
			if inLiteral {
				b.WriteRune(' ')
			} else {
				b.WriteRune(c)
			}
			continue
		}
		if inLiteral && i+1 < len(runes) && runes[i+1] == '\'' {
			i++
			b.WriteRune(' ')
			continue
		}
		inLiteral = !inLiteral
		b.WriteRune(' ')
	}
	if inLiteral {
		return "", fmt.Errorf("unterminated string literal")
	}
	return b.String(), nil
}
