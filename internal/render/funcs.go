package render

import (
	"fmt"
	"strings"
	"text/template"

	"admin_codegen/internal/models"
	"admin_codegen/internal/utils"
)

var prismaOperators = map[string]string{
	models.QueryEQ:   "equals",
	models.QueryNE:   "not",
	models.QueryGT:   "gt",
	models.QueryGTE:  "gte",
	models.QueryLT:   "lt",
	models.QueryLTE:  "lte",
	models.QueryLike: "contains",
}

// menuButtons are the permission suffixes of the buttons seeded under a menu.
var menuButtons = []string{"query", "add", "edit", "remove", "export"}

// templateFuncs returns the function map shared by every artifact template.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"upperFirst": utils.UpperFirst,
		"lowerFirst": utils.LowerFirst,
		"camel":      utils.ToCamelCase,
		"kebab":      utils.ToKebabCase,
		"lower":      strings.ToLower,
		"sqlQuote":   sqlQuote,
		"jsString":   jsString,
		"prismaOp":   prismaOp,
		"add":        func(a, b int) int { return a + b },
		"buttons":    func() []string { return menuButtons },
	}
}

func prismaOp(queryOperator string) (string, error) {
	op, ok := prismaOperators[queryOperator]
	if !ok {
		return "", fmt.Errorf("unsupported query operator %q", queryOperator)
	}
	return op, nil
}

// sqlQuote renders s as a SQL string literal.
func sqlQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// jsString renders s as a double quoted JavaScript string literal.
func jsString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")
	return `"` + r.Replace(s) + `"`
}
