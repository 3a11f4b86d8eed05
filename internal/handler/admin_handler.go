package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/driving-lesson-api/internal/dto"
	"github.com/noah-isme/driving-lesson-api/internal/models"
	"github.com/noah-isme/driving-lesson-api/pkg/response"
)

type adminTableService interface {
	Tables() []models.TableInfo
	Query(ctx context.Context, table string, query dto.TableQuery) (*dto.TablePage, error)
	Insert(ctx context.Context, actorID, table string, req dto.TableInsertRequest) (models.TableRow, error)
	Upsert(ctx context.Context, actorID, table string, req dto.TableUpsertRequest) ([]models.TableRow, error)
}

type systemMetricsProvider interface {
	Snapshot() models.SystemMetrics
}

// reservedTableParams are query parameters that are not column filters.
var reservedTableParams = map[string]struct{}{"page": {}, "limit": {}, "page_size": {}, "order_by": {}}

// AdminHandler exposes the raw table browser and runtime counters to administrators.
type AdminHandler struct {
	tables  adminTableService
	metrics systemMetricsProvider
}

// NewAdminHandler constructs an AdminHandler. A nil tables service leaves the table browser routes
// unregistered.
func NewAdminHandler(tables adminTableService, metrics systemMetricsProvider) *AdminHandler {
	return &AdminHandler{tables: tables, metrics: metrics}
}

// Tables godoc
// @Summary List browsable tables
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/tables [get]
func (h *AdminHandler) Tables(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.tables.Tables(), nil)
}

// Query godoc
// @Summary Page through a table
// @Tags Admin
// @Produce json
// @Param table path string true "Table name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param order_by query string false "Column to sort by, prefix with - for descending"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/tables/{table} [get]
func (h *AdminHandler) Query(c *gin.Context) {
	query := dto.TableQuery{Filters: map[string]string{}, OrderBy: c.Query("order_by")}
	query.Page, _ = strconv.Atoi(c.Query("page"))
	query.PageSize, _ = strconv.Atoi(c.DefaultQuery("limit", c.Query("page_size")))
	for key, values := range c.Request.URL.Query() {
		if _, reserved := reservedTableParams[key]; reserved || len(values) == 0 {
			continue
		}
		query.Filters[key] = values[0]
	}
	page, err := h.tables.Query(c.Request.Context(), c.Param("table"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page.Rows, &models.Pagination{Page: page.Page, PageSize: page.PageSize, TotalCount: page.Total})
}

// Insert godoc
// @Summary Insert a row
// @Tags Admin
// @Accept json
// @Produce json
// @Param table path string true "Table name"
// @Param payload body dto.TableInsertRequest true "Row"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/tables/{table} [post]
func (h *AdminHandler) Insert(c *gin.Context) {
	var req dto.TableInsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid row payload"))
		return
	}
	row, err := h.tables.Insert(c.Request.Context(), adminID(c), c.Param("table"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, row)
}

// Upsert godoc
// @Summary Insert rows or update them on a conflict key
// @Tags Admin
// @Accept json
// @Produce json
// @Param table path string true "Table name"
// @Param payload body dto.TableUpsertRequest true "Rows"
// @Success 200 {object} response.Envelope
// @Router /admin/tables/{table} [put]
func (h *AdminHandler) Upsert(c *gin.Context) {
	var req dto.TableUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid upsert payload"))
		return
	}
	rows, err := h.tables.Upsert(c.Request.Context(), adminID(c), c.Param("table"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// System godoc
// @Summary Runtime counters
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/system [get]
func (h *AdminHandler) System(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}

func adminID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}
