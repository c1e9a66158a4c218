package models

// Language types stored in gen_table_column.java_type.
const (
	TypeString = "String"
	TypeNumber = "Number"
	TypeDate   = "Date"
)

// HTML widgets stored in gen_table_column.html_type.
const (
	HTMLInput       = "input"
	HTMLTextarea    = "textarea"
	HTMLSelect      = "select"
	HTMLRadio       = "radio"
	HTMLCheckbox    = "checkbox"
	HTMLDatetime    = "datetime"
	HTMLImageUpload = "imageUpload"
	HTMLFileUpload  = "fileUpload"
	HTMLEditor      = "editor"
)

// Query operators stored in gen_table_column.query_type.
const (
	QueryEQ      = "EQ"
	QueryNE      = "NE"
	QueryGT      = "GT"
	QueryGTE     = "GTE"
	QueryLT      = "LT"
	QueryLTE     = "LTE"
	QueryLike    = "LIKE"
	QueryBetween = "BETWEEN"
)

// Defaults written on import.
const (
	TplCategoryCrud   = "crud"
	TplWebElementPlus = "element-plus"
	GenTypeZip        = "0"
	GenPathDefault    = "/"
)

var (
	languageTypes  = []string{TypeString, TypeNumber, TypeDate}
	htmlWidgets    = []string{HTMLInput, HTMLTextarea, HTMLSelect, HTMLRadio, HTMLCheckbox, HTMLDatetime, HTMLImageUpload, HTMLFileUpload, HTMLEditor}
	queryOperators = []string{QueryEQ, QueryNE, QueryGT, QueryGTE, QueryLT, QueryLTE, QueryLike, QueryBetween}
)

// ValidLanguageType reports whether v is a known language type.
func ValidLanguageType(v string) bool { return oneOf(languageTypes, v) }

// ValidHTMLWidget reports whether v is a known HTML widget.
func ValidHTMLWidget(v string) bool { return oneOf(htmlWidgets, v) }

// ValidQueryOperator reports whether v is a known query operator.
func ValidQueryOperator(v string) bool { return oneOf(queryOperators, v) }

func oneOf(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
