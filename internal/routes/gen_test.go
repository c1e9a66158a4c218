package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin_codegen/internal/handlers"
	"admin_codegen/internal/models"
	"admin_codegen/internal/render"
	"admin_codegen/internal/services"
	"admin_codegen/internal/utils"
)

var testSecret = []byte("test-secret")

type fakeGen struct {
	imported    []string
	operator    string
	deleted     []int64
	synced      string
	updated     *services.UpdateGenTableRequest
	detailIDs   []int64
	detailNames []string
}

func (f *fakeGen) ListDBTables(context.Context, models.DBTableQuery) ([]models.DBTable, int64, error) {
	return []models.DBTable{{TableName: "sys_post"}}, 1, nil
}

func (f *fakeGen) List(_ context.Context, q models.GenTableQuery) ([]models.GenTable, int64, error) {
	return []models.GenTable{{TableID: 1, Name: "sys_user"}}, 11, nil
}

func (f *fakeGen) ImportTables(_ context.Context, names []string, operator string) error {
	f.imported = names
	f.operator = operator
	return nil
}

func (f *fakeGen) detail(id int64, name string) *models.TableDetail {
	return models.NewTableDetail(models.GenTable{
		TableID: id,
		Name:    name,
		Columns: []models.GenTableColumn{{ColumnID: 5, ColumnName: "post_id", IsPk: true, IsIncrement: true}},
	})
}

func (f *fakeGen) DetailByID(_ context.Context, id int64) (*models.TableDetail, error) {
	f.detailIDs = append(f.detailIDs, id)
	if id != 1 {
		return nil, fmt.Errorf("%w: table %d", services.ErrNotFound, id)
	}
	return f.detail(1, "sys_post"), nil
}

func (f *fakeGen) DetailByName(_ context.Context, name string) (*models.TableDetail, error) {
	f.detailNames = append(f.detailNames, name)
	return f.detail(1, name), nil
}

func (f *fakeGen) Update(_ context.Context, req services.UpdateGenTableRequest, operator string) error {
	f.updated = &req
	f.operator = operator
	return nil
}

func (f *fakeGen) Delete(_ context.Context, ids []int64) error {
	f.deleted = ids
	return nil
}

func (f *fakeGen) Synchronize(_ context.Context, name, operator string) error {
	f.synced = name
	f.operator = operator
	return nil
}

func (f *fakeGen) Preview(_ context.Context, id int64) (map[string]string, error) {
	switch id {
	case 2:
		return nil, &render.RenderError{Artifact: "vue/index.vue", Table: "sys_post", Err: errors.New("unknown query type")}
	case 3:
		return nil, errors.New("connection refused")
	}
	return map[string]string{"vue/api.js": "export {}"}, nil
}

func (f *fakeGen) Generate(_ context.Context, names []string, w io.Writer) error {
	if names[0] == "sys_missing" {
		return fmt.Errorf("%w: table sys_missing is not managed", services.ErrNotFound)
	}
	_, err := w.Write([]byte("PK-zip"))
	return err
}

type fakeSQL struct {
	script string
}

func (f *fakeSQL) Execute(_ context.Context, script string) ([]services.StatementResult, error) {
	f.script = script
	return []services.StatementResult{{Statement: script, RowCount: 1}}, nil
}

func newRouter(t *testing.T) (*gin.Engine, *fakeGen, *fakeSQL) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gen := &fakeGen{}
	exec := &fakeSQL{}
	router := gin.New()
	RegisterRoutes(router, handlers.NewGenHandler(gen), handlers.NewSQLHandler(exec), testSecret)
	return router, gen, exec
}

func token(t *testing.T, roles []string, perms ...string) string {
	t.Helper()
	tok, err := utils.GenerateToken(testSecret, "alice", roles, perms, time.Hour)
	require.NoError(t, err)
	return tok
}

func do(router *gin.Engine, method, target, tok, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthCheck(t *testing.T) {
	router, _, _ := newRouter(t)
	w := do(router, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthAndPermissions(t *testing.T) {
	router, _, _ := newRouter(t)

	w := do(router, http.MethodGet, "/api/v1/tool/gen/list", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodGet, "/api/v1/tool/gen/list", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodGet, "/api/v1/tool/gen/list", token(t, nil, "tool:gen:query"), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(router, http.MethodGet, "/api/v1/tool/gen/list", token(t, nil, "tool:gen:list"), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/api/v1/tool/gen/list", token(t, nil, utils.AllPermissions), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListEnvelope(t *testing.T) {
	router, _, _ := newRouter(t)
	w := do(router, http.MethodGet, "/api/v1/tool/gen/list?pageNum=2&pageSize=10", token(t, nil, "tool:gen:list"), "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(11), data["total"])
	assert.Len(t, data["rows"], 1)
}

func TestImportTable(t *testing.T) {
	router, gen, _ := newRouter(t)
	tok := token(t, nil, "tool:gen:import")

	w := do(router, http.MethodPost, "/api/v1/tool/gen/importTable?tables=sys_post,+sys_user", tok, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"sys_post", "sys_user"}, gen.imported)
	assert.Equal(t, "alice", gen.operator)

	w = do(router, http.MethodPost, "/api/v1/tool/gen/importTable", tok, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPost, "/api/v1/tool/gen/importTable?tables=sys-post", tok, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDetailByIDOrName(t *testing.T) {
	router, gen, _ := newRouter(t)
	tok := token(t, nil, "tool:gen:query")

	w := do(router, http.MethodGet, "/api/v1/tool/gen/1", tok, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Contains(t, data, "info")
	assert.Len(t, data["rows"], 1)
	assert.Len(t, data["tables"], 1)

	w = do(router, http.MethodGet, "/api/v1/tool/gen/sys_post", tok, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"sys_post"}, gen.detailNames)

	w = do(router, http.MethodGet, "/api/v1/tool/gen/42", tok, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, []int64{1, 42}, gen.detailIDs)
}

func TestUpdateDeleteSync(t *testing.T) {
	router, gen, _ := newRouter(t)
	edit := token(t, nil, "tool:gen:edit", "tool:gen:remove")

	w := do(router, http.MethodPut, "/api/v1/tool/gen", edit,
		`{"tableId":1,"className":"SysPost","moduleName":"system","businessName":"post","functionName":"Post","parentMenuId":3}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gen.updated)
	assert.Equal(t, int64(3), gen.updated.ParentMenuID)

	w = do(router, http.MethodPut, "/api/v1/tool/gen", edit, `{"className":"SysPost"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodDelete, "/api/v1/tool/gen/1,2,3", edit, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{1, 2, 3}, gen.deleted)

	w = do(router, http.MethodDelete, "/api/v1/tool/gen/1,x", edit, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodGet, "/api/v1/tool/gen/synchDb/sys_post", edit, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sys_post", gen.synced)
}

func TestPreview(t *testing.T) {
	router, _, _ := newRouter(t)
	tok := token(t, nil, "tool:gen:preview")

	w := do(router, http.MethodGet, "/api/v1/tool/gen/preview/1", tok, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "export {}", data["vue/api.js"])

	tests := []struct {
		name   string
		target string
		status int
	}{
		{name: "bad id", target: "/api/v1/tool/gen/preview/abc", status: http.StatusBadRequest},
		{name: "template failure", target: "/api/v1/tool/gen/preview/2", status: http.StatusUnprocessableEntity},
		{name: "storage failure", target: "/api/v1/tool/gen/preview/3", status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodGet, tt.target, tok, "")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "error", decode(t, w)["status"])
		})
	}
}

func TestBatchGenCode(t *testing.T) {
	router, _, _ := newRouter(t)
	tok := token(t, nil, "tool:gen:code")

	w := do(router, http.MethodGet, "/api/v1/tool/gen/batchGenCode?tables=sys_post", tok, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream;charset=UTF-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="code.zip"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Content-Disposition", w.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "PK-zip", w.Body.String())

	w = do(router, http.MethodGet, "/api/v1/tool/gen/batchGenCode?tables=sys_missing", tok, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestExecuteRequiresAdmin(t *testing.T) {
	router, _, exec := newRouter(t)
	body := `{"sql":"select 1"}`

	w := do(router, http.MethodPost, "/api/v1/tool/gen/execute", token(t, []string{"common"}, utils.AllPermissions), body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, exec.script)

	w = do(router, http.MethodPost, "/api/v1/tool/gen/execute", token(t, []string{"admin"}), body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "select 1", exec.script)

	w = do(router, http.MethodPost, "/api/v1/tool/gen/execute", token(t, []string{"admin"}), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
