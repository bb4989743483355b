package products

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	dedupapp "foodcatalog/internal/application/dedup"
	"foodcatalog/internal/domain/repositories"
	"foodcatalog/normalization"
	apperrors "foodcatalog/server/errors"
	"foodcatalog/server/middleware"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

// Handler HTTP обработчик каталога продуктов
type Handler struct {
	useCase   *dedupapp.UseCase
	exporter  *normalization.Exporter
	responder *middleware.ErrorResponder
}

// NewHandler создает новый HTTP обработчик для каталога
func NewHandler(
	useCase *dedupapp.UseCase,
	exporter *normalization.Exporter,
	responder *middleware.ErrorResponder,
) *Handler {
	return &Handler{
		useCase:   useCase,
		exporter:  exporter,
		responder: responder,
	}
}

// CountResponse размер каталога
type CountResponse struct {
	Count int64 `json:"count"`
}

// LinkResponse результат связывания
type LinkResponse struct {
	Success   bool   `json:"success"`
	UpdatedID *int64 `json:"updated_id"`
}

// BatchLinkRequest связывание выбранных продуктов с одним target
type BatchLinkRequest struct {
	TargetID  int64   `json:"target_id" binding:"required"`
	SourceIDs []int64 `json:"source_ids" binding:"required"`
}

// ClusterFieldsRow строка внешнего результата кластеризации.
// temp_cluster_id принимается как синоним cluster_id.
type ClusterFieldsRow struct {
	ID            int64 `json:"id"`
	ClusterID     *int  `json:"cluster_id"`
	TempClusterID *int  `json:"temp_cluster_id"`
	ClusterCount  int   `json:"cluster_count"`
}

// HandleListProducts возвращает страницу каталога
// @Summary Список продуктов
// @Tags products
// @Produce json
// @Param limit query int false "Размер страницы" default(50)
// @Param offset query int false "Смещение"
// @Success 200 {array} repositories.Product
// @Failure 400 {object} middleware.ErrorResponse
// @Router /products [get]
func (h *Handler) HandleListProducts(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		h.responder.Respond(c, err)
		return
	}
	result, err := h.useCase.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleCountProducts возвращает размер каталога
// @Summary Число продуктов
// @Tags products
// @Produce json
// @Success 200 {object} CountResponse
// @Router /products/count [get]
func (h *Handler) HandleCountProducts(c *gin.Context) {
	count, err := h.useCase.CountProducts(c.Request.Context())
	if err != nil {
		h.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, CountResponse{Count: count})
}

// HandleLatestProduct возвращает последний добавленный продукт
// @Summary Последний продукт
// @Tags products
// @Produce json
// @Success 200 {object} repositories.Product
// @Failure 404 {object} middleware.ErrorResponse
// @Router /products/latest [get]
func (h *Handler) HandleLatestProduct(c *gin.Context) {
	product, err := h.useCase.GetLatest(c.Request.Context())
	if err != nil {
		h.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// HandleListIncomplete возвращает незаполненные продукты
// @Summary Незаполненные продукты
// @Tags products
// @Produce json
// @Param limit query int false "Размер страницы" default(50)
// @Param offset query int false "Смещение"
// @Success 200 {array} repositories.Product
// @Router /products/incompleted [get]
func (h *Handler) HandleListIncomplete(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		h.responder.Respond(c, err)
		return
	}
	result, err := h.useCase.ListIncomplete(c.Request.Context(), filter)
	if err != nil {
		h.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleListIncompleteAlike очередь проверки дубликатов
// @Summary Незаполненные продукты с похожими
// @Tags review
// @Produce json
// @Success 200 {array} repositories.Product
// @Router /products/incomplete/alike [get]
func (h *Handler) HandleListIncompleteAlike(c *gin.Context) {
	result, err := h.useCase.ListIncompleteWithCluster(c.Request.Context())
	if err != nil {
		h.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleListIncompleteUnique незаполненные продукты без похожих
// @Summary Незаполненные уникальные продукты
// @Tags review
// @Produce json
// @Success 200 {array} repositories.Product
// @Router /products/incomplete/unique [get]
func (h *Handler) HandleListIncompleteUnique(c *gin.Context) {
	result, err := h.useCase.ListIncompleteUnique(c.Request.Context())
	if err != nil {
		h.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleExportReview выгружает очередь проверки
// @Summary Выгрузка очереди проверки
// @Tags review
// @Produce octet-stream
// @Param format query string false "xlsx, csv или json" default(xlsx)
// @Success 200 {file} file
// @Failure 400 {object} middleware.ErrorResponse
// @Router /products/incomplete/alike/export [get]
func (h *Handler) HandleExportReview(c *gin.Context) {
	format, err := normalization.ParseExportFormat(c.Query("format"))
	if err != nil {
		h.responder.Respond(c, apperrors.NewValidationError(err.Error(), err))
		return
	}

	result, err := h.useCase.ListIncompleteWithCluster(c.Request.Context())
	if err != nil {
		h.responder.Respond(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.Export(&buf, format, result); err != nil {
		h.responder.Respond(c, apperrors.NewInternalError("failed to export review queue", err))
		return
	}

	filename := fmt.Sprintf("review_%s%s", time.Now().Format("20060102_150405"), format.Extension())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// HandleListAlike продукты той же группы
// @Summary Похожие продукты
// @Tags review
// @Produce json
// @Param product_id path int true "ID продукта"
// @Param cluster_id path int true "ID группы"
// @Success 200 {array} repositories.Product
// @Failure 400 {object} middleware.ErrorResponse
// @Router /products/alike/{product_id}/{cluster_id} [get]
func (h *Handler) HandleListAlike(c *gin.Context) {
	productID, err := parseIDParam(c, "product_id")
	if err != nil {
		h.responder.Respond(c, err)
		return
	}
	clusterID, err := strconv.Atoi(c.Param("cluster_id"))
	if err != nil {
		h.responder.Respond(c, apperrors.NewValidationError("invalid cluster_id", err))
		return
	}

	result, err := h.useCase.ListAlike(c.Request.Context(), productID, clusterID)
	if err != nil {
		h.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleGetProduct возвращает продукт по ID
// @Summary Продукт по ID
// @Tags products
// @Produce json
// @Param id path int true "ID продукта"
// @Success 200 {object} repositories.Product
// @Failure 404 {object} middleware.ErrorResponse
// @Router /products/{id} [get]
func (h *Handler) HandleGetProduct(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.responder.Respond(c, err)
		return
	}
	product, err := h.useCase.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// HandleUpdateCluster применяет результат кластеризации построчно
// @Summary Запись полей кластеризации
// @Tags clustering
// @Accept json
// @Produce json
// @Param rows body []ClusterFieldsRow true "Строки"
// @Success 200 {object} dedup.PassSummary
// @Failure 400 {object} middleware.ErrorResponse
// @Router /products/update/cluster [put]
func (h *Handler) HandleUpdateCluster(c *gin.Context) {
	var rows []ClusterFieldsRow
	if err := c.ShouldBindJSON(&rows); err != nil {
		h.responder.Respond(c, apperrors.NewValidationError("invalid request body", err))
		return
	}

	assignments := make([]repositories.ClusterAssignment, len(rows))
	for i, row := range rows {
		clusterID := repositories.NoCluster
		switch {
		case row.ClusterID != nil:
			clusterID = *row.ClusterID
		case row.TempClusterID != nil:
			clusterID = *row.TempClusterID
		}
		assignments[i] = repositories.ClusterAssignment{ID: row.ID, ClusterID: clusterID, ClusterCount: row.ClusterCount}
	}

	summary, err := h.useCase.UpdateClusterFields(c.Request.Context(), assignments)
	if err != nil {
		h.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// HandleLink связывает source с target
// @Summary Связать продукт
// @Tags linking
// @Produce json
// @Param source_id path int true "ID дубликата"
// @Param target_id path int true "ID канонической записи"
// @Success 200 {object} LinkResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /products/link/{source_id}/{target_id} [put]
func (h *Handler) HandleLink(c *gin.Context) {
	sourceID, err := parseIDParam(c, "source_id")
	if err != nil {
		h.responder.Respond(c, err)
		return
	}
	targetID, err := parseIDParam(c, "target_id")
	if err != nil {
		h.responder.Respond(c, err)
		return
	}

	outcome, err := h.useCase.Link(c.Request.Context(), sourceID, targetID)
	if err != nil {
		h.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, LinkResponse{Success: outcome.Success, UpdatedID: outcome.UpdatedID})
}

// HandleBatchLink связывает выбранные продукты с target
// @Summary Связать выбранные продукты
// @Tags linking
// @Accept json
// @Produce json
// @Param request body BatchLinkRequest true "Выбор"
// @Success 200 {array} dedup.LinkOutcome
// @Failure 400 {object} middleware.ErrorResponse
// @Router /products/link [post]
func (h *Handler) HandleBatchLink(c *gin.Context) {
	var req BatchLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.Respond(c, apperrors.NewValidationError("invalid request body", err))
		return
	}

	outcomes, err := h.useCase.LinkMany(c.Request.Context(), req.TargetID, req.SourceIDs)
	if err != nil {
		h.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, outcomes)
}

// HandleVerify отмечает продукт как проверенный
// @Summary Проверить продукт
// @Tags linking
// @Produce json
// @Param id path int true "ID продукта"
// @Success 200 {object} repositories.Product
// @Failure 400 {object} middleware.ErrorResponse
// @Router /products/{id}/verify [put]
func (h *Handler) HandleVerify(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.responder.Respond(c, err)
		return
	}
	product, err := h.useCase.Verify(c.Request.Context(), id)
	if err != nil {
		h.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// HandleRecluster запускает проход кластеризации вручную
// @Summary Перекластеризация
// @Tags clustering
// @Produce json
// @Success 200 {object} dedup.ReclusterReport
// @Failure 422 {object} middleware.ErrorResponse
// @Failure 429 {object} middleware.ErrorResponse
// @Router /products/recluster [post]
func (h *Handler) HandleRecluster(c *gin.Context) {
	report, err := h.useCase.Recluster(c.Request.Context())
	if err != nil {
		h.responder.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// HealthResponse состояние сервиса
type HealthResponse struct {
	Status string                       `json:"status"`
	Store  string                       `json:"store"`
	Errors apperrors.ErrorStatsSnapshot `json:"errors"`
}

// HandleHealth проверка живости и доступности хранилища
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *Handler) HandleHealth(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Store: "ok", Errors: h.responder.Stats().Snapshot()}
	if err := h.useCase.Ping(c.Request.Context()); err != nil {
		resp.Status = "degraded"
		resp.Store = "unavailable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("invalid %s", name), err)
	}
	return id, nil
}

func parseFilter(c *gin.Context) (repositories.ProductFilter, error) {
	filter := repositories.ProductFilter{Limit: defaultLimit}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return filter, apperrors.NewValidationError("invalid limit", err)
		}
		if limit > maxLimit {
			limit = maxLimit
		}
		filter.Limit = limit
	}
	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, apperrors.NewValidationError("invalid offset", err)
		}
		filter.Offset = offset
	}
	return filter, nil
}
