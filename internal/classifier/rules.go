package classifier

import (
	"strconv"
	"strings"

	"admin_codegen/internal/models"
	"admin_codegen/internal/utils"
)

// Rule maps a column to its next classification state.
type Rule func(col models.GenTableColumn) models.GenTableColumn

// typeRule ties a SQL type family to the attributes it implies.
type typeRule struct {
	family []string
	apply  func(col models.GenTableColumn) models.GenTableColumn
}

// nameHint is one column-name heuristic; only the first matching hint applies.
type nameHint struct {
	tokens []string
	widget string
	query  string
}

var nameHints = []nameHint{
	{tokens: []string{"status"}, widget: models.HTMLRadio},
	{tokens: []string{"type", "sex"}, widget: models.HTMLSelect},
	{tokens: []string{"time", "_date"}, widget: models.HTMLDatetime, query: models.QueryBetween},
	{tokens: []string{"image"}, widget: models.HTMLImageUpload},
	{tokens: []string{"file"}, widget: models.HTMLFileUpload},
	{tokens: []string{"content"}, widget: models.HTMLEditor},
}

// defaultsRule sets the attributes every column starts from.
func defaultsRule(col models.GenTableColumn) models.GenTableColumn {
	col.FieldIdentifier = utils.ToCamelCase(col.ColumnName)
	col.LanguageType = models.TypeString
	col.QueryOperator = models.QueryEQ
	col.HTMLWidget = models.HTMLInput
	col.IsInsert = !(col.IsPk && col.IsIncrement)
	col.IsEdit = false
	col.IsList = false
	col.IsQuery = false
	if strings.TrimSpace(col.ColumnComment) == "" {
		col.ColumnComment = col.ColumnName
	}
	return col
}

// typeFamilyRule applies the first SQL type family that matches the column type.
func (c Config) typeFamilyRule() Rule {
	table := []typeRule{
		{family: c.TextTypes, apply: func(col models.GenTableColumn) models.GenTableColumn {
			col.HTMLWidget = models.HTMLTextarea
			return col
		}},
		{family: c.StringTypes, apply: func(col models.GenTableColumn) models.GenTableColumn {
			if ColumnLength(col.ColumnType) >= c.TextareaMinLength {
				col.HTMLWidget = models.HTMLTextarea
			} else {
				col.HTMLWidget = models.HTMLInput
			}
			return col
		}},
		{family: c.TimeTypes, apply: func(col models.GenTableColumn) models.GenTableColumn {
			col.LanguageType = models.TypeDate
			col.HTMLWidget = models.HTMLDatetime
			return col
		}},
		{family: c.NumberTypes, apply: func(col models.GenTableColumn) models.GenTableColumn {
			col.LanguageType = models.TypeNumber
			col.HTMLWidget = models.HTMLInput
			return col
		}},
	}

	return func(col models.GenTableColumn) models.GenTableColumn {
		for _, tr := range table {
			if familyContains(tr.family, col.ColumnType) {
				return tr.apply(col)
			}
		}
		return col
	}
}

// visibilityRule decides the edit, list and query flags.
func (c Config) visibilityRule() Rule {
	return func(col models.GenTableColumn) models.GenTableColumn {
		name := strings.ToLower(col.ColumnName)
		col.IsEdit = !listed(c.NotEdit, name) && !col.IsPk
		col.IsList = !listed(c.NotList, name) && !col.IsPk
		col.IsQuery = !listed(c.NotQuery, name) && !col.IsPk && col.HTMLWidget != models.HTMLTextarea
		return col
	}
}

// nameRule applies the column-name heuristics.
func nameRule(col models.GenTableColumn) models.GenTableColumn {
	lower := strings.ToLower(col.ColumnName)
	if strings.Contains(lower, "name") {
		col.QueryOperator = models.QueryLike
	}
	for _, hint := range nameHints {
		if !containsAny(lower, hint.tokens) {
			continue
		}
		col.HTMLWidget = hint.widget
		if hint.query != "" {
			col.QueryOperator = hint.query
		}
		break
	}
	return col
}

// familyContains reports whether value and any family token contain one another.
// An empty value matches nothing.
func familyContains(family []string, value string) bool {
	if value == "" {
		return false
	}
	for _, token := range family {
		if token == "" {
			continue
		}
		if strings.Contains(token, value) || strings.Contains(value, token) {
			return true
		}
	}
	return false
}

// listed reports whether name is one of the entries of list.
func listed(list []string, name string) bool {
	for _, entry := range list {
		if strings.ToLower(entry) == name {
			return true
		}
	}
	return false
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// ColumnLength returns the integer between the first "(" and the first ")" of a
// column type, or 0 when there is none or it does not parse.
func ColumnLength(columnType string) int {
	open := strings.Index(columnType, "(")
	if open < 0 {
		return 0
	}
	rest := columnType[open+1:]
	end := strings.Index(rest, ")")
	if end < 0 {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest[:end]))
	if err != nil {
		return 0
	}
	return n
}
