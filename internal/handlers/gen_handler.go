package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"admin_codegen/internal/middlewares"
	"admin_codegen/internal/models"
	"admin_codegen/internal/responses"
	"admin_codegen/internal/services"
	"admin_codegen/internal/utils"
)

// GenService is the generator surface the handler drives.
type GenService interface {
	ListDBTables(ctx context.Context, q models.DBTableQuery) ([]models.DBTable, int64, error)
	List(ctx context.Context, q models.GenTableQuery) ([]models.GenTable, int64, error)
	ImportTables(ctx context.Context, names []string, operator string) error
	DetailByID(ctx context.Context, id int64) (*models.TableDetail, error)
	DetailByName(ctx context.Context, name string) (*models.TableDetail, error)
	Update(ctx context.Context, req services.UpdateGenTableRequest, operator string) error
	Delete(ctx context.Context, ids []int64) error
	Synchronize(ctx context.Context, tableName, operator string) error
	Preview(ctx context.Context, tableID int64) (map[string]string, error)
	Generate(ctx context.Context, names []string, w io.Writer) error
}

type GenHandler struct {
	genService GenService
}

func NewGenHandler(genService GenService) *GenHandler {
	return &GenHandler{
		genService: genService,
	}
}

// fail maps service errors onto HTTP statuses.
func fail(c *gin.Context, err error, message string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case services.IsRenderError(err):
		status = http.StatusUnprocessableEntity
		log.Warn().Err(err).Str("path", c.FullPath()).Msg("Stored table configuration does not render")
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg(message)
	}
	responses.Fail(c, status, err, message)
}

// tableNames reads and checks the comma separated tables query parameter.
func tableNames(c *gin.Context) ([]string, error) {
	names := utils.SplitList(c.Query("tables"))
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: tables is required", services.ErrValidation)
	}
	for _, n := range names {
		if !utils.IsValidIdentifier(n) {
			return nil, fmt.Errorf("%w: invalid table name %q", services.ErrValidation, n)
		}
	}
	return names, nil
}

func (h *GenHandler) ListDBTables(c *gin.Context) {
	var q models.DBTableQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid query parameters")
		return
	}
	q.Normalize()

	rows, total, err := h.genService.ListDBTables(c.Request.Context(), q)
	if err != nil {
		fail(c, err, "Failed to list database tables")
		return
	}
	responses.Table(c, rows, total)
}

func (h *GenHandler) List(c *gin.Context) {
	var q models.GenTableQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid query parameters")
		return
	}
	q.Normalize()

	rows, total, err := h.genService.List(c.Request.Context(), q)
	if err != nil {
		fail(c, err, "Failed to list generator tables")
		return
	}
	responses.Table(c, rows, total)
}

func (h *GenHandler) ImportTables(c *gin.Context) {
	names, err := tableNames(c)
	if err != nil {
		fail(c, err, "Invalid table list")
		return
	}

	if err := h.genService.ImportTables(c.Request.Context(), names, middlewares.Operator(c)); err != nil {
		fail(c, err, "Failed to import tables")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Tables imported successfully")
}

// Detail accepts either a numeric table id or a table name.
func (h *GenHandler) Detail(c *gin.Context) {
	ref := c.Param("id")

	var (
		detail *models.TableDetail
		err    error
	)
	if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		detail, err = h.genService.DetailByID(c.Request.Context(), id)
	} else {
		detail, err = h.genService.DetailByName(c.Request.Context(), ref)
	}
	if err != nil {
		fail(c, err, "Failed to load table")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{
		"info":   detail,
		"rows":   detail.Columns,
		"tables": []*models.TableDetail{detail},
	}, "")
}

func (h *GenHandler) Update(c *gin.Context) {
	var req services.UpdateGenTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := h.genService.Update(c.Request.Context(), req, middlewares.Operator(c)); err != nil {
		fail(c, err, "Failed to update table")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Table updated successfully")
}

func (h *GenHandler) Delete(c *gin.Context) {
	parts := utils.SplitList(c.Param("ids"))
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			responses.Fail(c, http.StatusBadRequest, err, "Invalid table id "+p)
			return
		}
		ids = append(ids, id)
	}

	if err := h.genService.Delete(c.Request.Context(), ids); err != nil {
		fail(c, err, "Failed to delete tables")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Tables deleted successfully")
}

func (h *GenHandler) Synchronize(c *gin.Context) {
	name := c.Param("tableName")
	if !utils.IsValidIdentifier(name) {
		responses.Fail(c, http.StatusBadRequest, nil, "Invalid table name")
		return
	}

	if err := h.genService.Synchronize(c.Request.Context(), name, middlewares.Operator(c)); err != nil {
		fail(c, err, "Failed to synchronize table")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Table synchronized successfully")
}

func (h *GenHandler) Preview(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("tableId"), 10, 64)
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid table id")
		return
	}

	preview, err := h.genService.Preview(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Failed to render preview")
		return
	}
	responses.Success(c, http.StatusOK, preview, "")
}

// BatchGenCode streams a zip with the code of every requested table. The
// archive is built in memory first so failures still produce a JSON error.
func (h *GenHandler) BatchGenCode(c *gin.Context) {
	names, err := tableNames(c)
	if err != nil {
		fail(c, err, "Invalid table list")
		return
	}

	var buf bytes.Buffer
	if err := h.genService.Generate(c.Request.Context(), names, &buf); err != nil {
		fail(c, err, "Failed to generate code")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="code.zip"`)
	c.Header("Access-Control-Expose-Headers", "Content-Disposition")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Data(http.StatusOK, "application/octet-stream;charset=UTF-8", buf.Bytes())

	log.Info().
		Str("tables", strings.Join(names, ",")).
		Int("bytes", buf.Len()).
		Msg("Code archive served")
}
