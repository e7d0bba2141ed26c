package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression is a parsed dice expression ready to be rolled.
// Invariant after Parse: Count >= 1, Sides >= 2.
type Expression struct {
	Raw      string // original input string
	Count    int    // number of dice
	Sides    int    // faces per die
	Modifier int    // flat modifier (may be negative)
}

// maxDice and maxSides bound user-supplied expressions; content files are
// trusted but still flow through the same validation.
const (
	maxDice  = 20
	maxSides = 1000
)

// Parse parses a dice expression string into an Expression.
// Supported forms: "d20", "2d6", "2d6+3", "4d8-2".
//
// Precondition: expr must be a non-empty string.
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	if expr == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}

	raw := expr
	s := strings.ToLower(strings.TrimSpace(expr))

	countStr, rest, ok := strings.Cut(s, "d")
	if !ok {
		return Expression{}, fmt.Errorf("dice: missing 'd' in expression %q", raw)
	}

	count := 1
	if countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: %w", raw, err)
		}
		count = n
	}
	if count < 1 || count > maxDice {
		return Expression{}, fmt.Errorf("dice: die count in %q must be 1-%d", raw, maxDice)
	}

	// Split sides from an optional trailing modifier. The sign search starts
	// at index 1 so a leading sign is never treated as a modifier separator.
	modIdx := -1
	for i := 1; i < len(rest); i++ {
		if rest[i] == '+' || rest[i] == '-' {
			modIdx = i
			break
		}
	}
	sidesStr, modStr := rest, ""
	if modIdx >= 0 {
		sidesStr, modStr = rest[:modIdx], rest[modIdx:]
	}

	sides, err := strconv.Atoi(sidesStr)
	if err != nil {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: %w", raw, err)
	}
	if sides < 2 || sides > maxSides {
		return Expression{}, fmt.Errorf("dice: die sides in %q must be 2-%d", raw, maxSides)
	}

	modifier := 0
	if modStr != "" {
		modifier, err = strconv.Atoi(modStr)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", raw, err)
		}
	}

	return Expression{Raw: raw, Count: count, Sides: sides, Modifier: modifier}, nil
}

// Roll evaluates expr using src and returns the summed result.
//
// Precondition: expr must come from Parse; src must be non-nil.
// Postcondition: Returns >= Count + Modifier.
func Roll(expr Expression, src Source) int {
	total := expr.Modifier
	for i := 0; i < expr.Count; i++ {
		total += src.Intn(expr.Sides) + 1
	}
	return total
}

// RollExpr parses expr and rolls it using src in a single call.
func RollExpr(expr string, src Source) (int, error) {
	e, err := Parse(expr)
	if err != nil {
		return 0, err
	}
	return Roll(e, src), nil
}

// MustParse parses expr and panics on error. Useful for package-level constants.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}
