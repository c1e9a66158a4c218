package render

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin_codegen/internal/classifier"
	"admin_codegen/internal/models"
	"admin_codegen/internal/utils"
)

func sysPostDetail(t *testing.T) *models.TableDetail {
	t.Helper()
	raws := []models.RawColumn{
		{ColumnName: "post_id", IsPk: true, IsIncrement: true, ColumnType: "int", Sort: 1, ColumnComment: "Post ID"},
		{ColumnName: "post_code", IsRequired: true, ColumnType: "varchar(64)", Sort: 2, ColumnComment: "Post code"},
		{ColumnName: "post_name", IsRequired: true, ColumnType: "varchar(50)", Sort: 3, ColumnComment: "Post name"},
		{ColumnName: "post_sort", IsRequired: true, ColumnType: "int", Sort: 4, ColumnComment: "Display order"},
		{ColumnName: "status", ColumnType: "char(1)", Sort: 5, ColumnComment: "Status (0 normal 1 disabled)"},
		{ColumnName: "login_date", ColumnType: "datetime", Sort: 6, ColumnComment: "Last login"},
		{ColumnName: "create_time", ColumnType: "datetime", Sort: 7, ColumnComment: "Created at"},
		{ColumnName: "remark", ColumnType: "varchar(500)", Sort: 8, ColumnComment: "Remark"},
	}
	cols := classifier.New(classifier.DefaultConfig()).ClassifyAll(raws, classifier.TableContext{TableID: 1})
	require.Equal(t, "status", cols[4].ColumnName)
	cols[4].DictType = "sys_normal_disable"

	table := models.GenTable{
		TableID:        1,
		Name:           "sys_post",
		TableComment:   "Post",
		ClassName:      "SysPost",
		PackageName:    "admin",
		ModuleName:     "system",
		BusinessName:   "post",
		FunctionName:   "Post",
		FunctionAuthor: "admin",
		Columns:        cols,
	}
	table.SetOptions(models.TableOptions{ParentMenuID: 3})
	return models.NewTableDetail(table)
}

func fieldSet(t *testing.T, re *regexp.Regexp, s string, transform func(string) string) []string {
	t.Helper()
	seen := map[string]bool{}
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		name := m[1]
		if transform != nil {
			name = transform(name)
		}
		seen[name] = true
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func identifiers(cols ...[]Column) []string {
	seen := map[string]bool{}
	for _, group := range cols {
		for _, c := range group {
			seen[c.FieldIdentifier] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestNewRenderModel(t *testing.T) {
	m := NewRenderModel(sysPostDetail(t))

	assert.Equal(t, "sysPost", m.ModelName)
	assert.Equal(t, "SysPost", m.ModelNamePascal)
	assert.Equal(t, "sys-post", m.FileName)
	assert.Equal(t, "sysPost", m.EntityName)
	assert.Equal(t, "Post", m.BusinessNamePascal)
	assert.Equal(t, int64(3), m.ParentMenuID)

	assert.Equal(t, "postId", m.PkColumn.FieldIdentifier)
	assert.True(t, m.PkIsNumber)
	assert.True(t, m.HasCreateTime)
	assert.False(t, m.HasUpdateTime)
	assert.False(t, m.HasBaseAuditFields)

	assert.Equal(t, `"sys_normal_disable"`, m.Dicts)
	assert.Equal(t, "sys_normal_disable", m.DictsNoSymbol)
	assert.True(t, strings.HasPrefix(m.ColumnNamesJSON, `["Post ID","Post code"`))

	assert.Equal(t, []string{"loginDate"}, identifiers(m.BetweenColumns))
	assert.Equal(t, []string{"postCode", "postName", "postSort", "status"}, identifiers(m.FilterColumns))
	assert.NotContains(t, identifiers(m.CreateColumns), "postId")
	assert.Contains(t, identifiers(m.ListColumns), "postId")
	assert.Equal(t, []string{"postCode", "postName", "postSort"}, identifiers(m.RequiredColumns))

	for _, c := range m.Columns {
		if c.ColumnName == "status" {
			assert.Equal(t, "Status", c.Label)
			assert.Equal(t, "Status", c.AttrName)
		}
	}
}

func TestRenderProducesEveryArtifact(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	out, err := r.Render(NewRenderModel(sysPostDetail(t)))
	require.NoError(t, err)

	for _, key := range Keys() {
		assert.NotEmpty(t, out[key], key)
	}
	assert.Len(t, out, 8)
	assert.Contains(t, out["nestjs/controller.ts"], "@Controller('system/post')")
	assert.Contains(t, out["vue/api.js"], "url: '/system/post/list'")
	assert.Contains(t, out["sql/menu.sql"], "'system:post:list'")
	assert.Contains(t, out["prisma/data.ts"], `perms: "system:post:export"`)
	assert.Contains(t, out["vue/index.vue"], `const { sys_normal_disable } = proxy.useDict("sys_normal_disable");`)
}

func withQueryOperator(detail *models.TableDetail, column, operator string) *models.TableDetail {
	for i := range detail.Columns {
		if detail.Columns[i].ColumnName == column {
			detail.Columns[i].QueryOperator = operator
		}
	}
	return detail
}

func TestArtifactsAgreeOnFields(t *testing.T) {
	tests := []struct {
		name   string
		detail func(t *testing.T) *models.TableDetail
	}{
		{
			name:   "default classification",
			detail: sysPostDetail,
		},
		{
			name: "numeric range column",
			detail: func(t *testing.T) *models.TableDetail {
				return withQueryOperator(sysPostDetail(t), "post_sort", models.QueryBetween)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewRenderModel(tt.detail(t))
			out, err := MustNew().Render(m)
			require.NoError(t, err)

			service := out["nestjs/service.ts"]
			dto := out["nestjs/dto.ts"]
			view := out["vue/index.vue"]

			query := identifiers(m.QueryColumns)
			form := identifiers(m.FormColumns)
			require.NotEmpty(t, query)
			require.NotEmpty(t, form)

			// service query conditions
			assert.Equal(t, query, fieldSet(t, regexp.MustCompile(`queryCondition\.(\w+) =`), service, nil))

			classes := strings.Split(dto, "export class ")
			require.Len(t, classes, 4)
			property := regexp.MustCompile(`(?m)^  (\w+)\??: (?:string|number);$`)
			rangeParam := regexp.MustCompile(`(?m)^    begin(\w+)\?: string;$`)

			dtoQuery := append(fieldSet(t, property, classes[1], nil), fieldSet(t, rangeParam, classes[1], utils.LowerFirst)...)
			sort.Strings(dtoQuery)
			assert.Equal(t, query, dtoQuery)

			assert.Equal(t, identifiers(m.CreateColumns), fieldSet(t, property, classes[2], nil))
			assert.Equal(t, identifiers(m.UpdateColumns, []Column{m.PkColumn}), fieldSet(t, property, classes[3], nil))

			viewQuery := append(
				fieldSet(t, regexp.MustCompile(`v-model="queryParams\.(\w+)"`), view, nil),
				fieldSet(t, regexp.MustCompile(`v-model="daterange(\w+?)(?:\[\d\])?"`), view, utils.LowerFirst)...,
			)
			sort.Strings(viewQuery)
			assert.Equal(t, query, viewQuery)
			assert.Equal(t, form, fieldSet(t, regexp.MustCompile(`v-model="form\.(\w+)"`), view, nil))

			for _, col := range m.BetweenColumns {
				assert.Contains(t, view, `v-model="daterange`+col.AttrName)
				assert.NotContains(t, view, `v-model="queryParams.`+col.FieldIdentifier+`"`)
			}
		})
	}
}

func TestRangeQueryOnNumericColumn(t *testing.T) {
	m := NewRenderModel(withQueryOperator(sysPostDetail(t), "post_sort", models.QueryBetween))
	require.Equal(t, []string{"loginDate", "postSort"}, identifiers(m.BetweenColumns))

	out, err := MustNew().Render(m)
	require.NoError(t, err)

	view := out["vue/index.vue"]
	assert.Contains(t, view, `v-model="daterangePostSort[0]"`)
	assert.Contains(t, view, `v-model="daterangePostSort[1]"`)
	assert.Contains(t, view, `queryParams.value.params["beginPostSort"]`)
	assert.NotContains(t, view, `v-model="queryParams.postSort"`)
	assert.Contains(t, out["nestjs/dto.ts"], "beginPostSort?: string;")
}

func TestPrimaryKeyPipes(t *testing.T) {
	r := MustNew()

	out, err := r.Render(NewRenderModel(sysPostDetail(t)))
	require.NoError(t, err)
	controller := out["nestjs/controller.ts"]
	assert.Contains(t, controller, "@Param('postId', ParseIntPipe) postId: number")
	assert.Contains(t, controller, "@Param('ids', ParseIntArrayPipe) postIds: number[]")

	detail := sysPostDetail(t)
	detail.PkColumn.LanguageType = models.TypeString
	out, err = r.Render(NewRenderModel(detail))
	require.NoError(t, err)
	controller = out["nestjs/controller.ts"]
	assert.Contains(t, controller, "@Param('postId') postId: string")
	assert.Contains(t, controller, "@Param('ids', ParseArrayPipe) postIds: string[]")
	assert.NotContains(t, controller, "ParseIntPipe")
}

func TestRenderFailsLoudly(t *testing.T) {
	detail := sysPostDetail(t)
	for i := range detail.Columns {
		if detail.Columns[i].ColumnName == "post_code" {
			detail.Columns[i].QueryOperator = "SOUNDS_LIKE"
		}
	}

	_, err := MustNew().Render(NewRenderModel(detail))
	require.Error(t, err)

	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, "nestjs/service.ts", renderErr.Artifact)
	assert.Equal(t, "sys_post", renderErr.Table)
}

func TestFilesUseArchivePaths(t *testing.T) {
	files, err := MustNew().Files(NewRenderModel(sysPostDetail(t)))
	require.NoError(t, err)

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
		assert.NotEmpty(t, f.Content, f.Path)
	}
	assert.Equal(t, []string{
		"nestjs/sys-post.service.ts",
		"nestjs/sys-post.controller.ts",
		"nestjs/sys-post.dto.ts",
		"nestjs/sys-post.module.ts",
		"vue/post/index.vue",
		"vue/post.js",
		"post.sql",
		"prisma/sys-post.data.ts",
	}, paths)
}

func TestCollapseBlankLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single blank line kept", "a\n\nb", "a\n\nb"},
		{"two blank lines", "a\n\n\nb", "a\n\nb"},
		{"whitespace only lines", "a\n  \n\t\n  b", "a\n\n  b"},
		{"no blank lines", "a\nb", "a\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CollapseBlankLines(tt.in))
		})
	}
}
