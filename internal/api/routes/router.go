package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/time/rate"

	"foodcatalog/docs"
	"foodcatalog/internal/api/handlers/products"
	"foodcatalog/server/middleware"
)

// RegisterOptions задают опции регистрации маршрутов
type RegisterOptions struct {
	// ReclusterLimiter ограничивает ручные проходы; nil снимает ограничение
	ReclusterLimiter *rate.Limiter
	SkipSwagger      bool
}

// Router управляет маршрутизацией приложения
type Router struct {
	engine    *gin.Engine
	products  *products.Handler
	responder *middleware.ErrorResponder
}

// NewRouter создает новый роутер
func NewRouter(engine *gin.Engine, productsHandler *products.Handler, responder *middleware.ErrorResponder) *Router {
	return &Router{engine: engine, products: productsHandler, responder: responder}
}

// RegisterAllRoutes регистрирует все маршруты приложения
func (r *Router) RegisterAllRoutes(opts RegisterOptions) {
	r.engine.GET("/health", r.products.HandleHealth)

	if !opts.SkipSwagger {
		docs.SwaggerInfo.BasePath = "/"
		r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))
	}

	r.registerProductRoutes(opts)
}

func (r *Router) registerProductRoutes(opts RegisterOptions) {
	h := r.products
	group := r.engine.Group("/products")

	// Выборки
	group.GET("", h.HandleListProducts)
	group.GET("/count", h.HandleCountProducts)
	group.GET("/latest", h.HandleLatestProduct)
	group.GET("/incompleted", h.HandleListIncomplete)
	group.GET("/incomplete/alike", h.HandleListIncompleteAlike)
	group.GET("/incomplete/alike/export", h.HandleExportReview)
	group.GET("/incomplete/unique", h.HandleListIncompleteUnique)
	group.GET("/alike/:product_id/:cluster_id", h.HandleListAlike)
	group.GET("/:id", h.HandleGetProduct)

	// Кластеризация
	group.PUT("/update/cluster", h.HandleUpdateCluster)
	recluster := []gin.HandlerFunc{h.HandleRecluster}
	if opts.ReclusterLimiter != nil {
		recluster = append([]gin.HandlerFunc{middleware.RateLimit(opts.ReclusterLimiter, r.responder)}, recluster...)
	}
	group.POST("/recluster", recluster...)

	// Связывание и проверка
	group.PUT("/link/:source_id/:target_id", h.HandleLink)
	group.POST("/link", h.HandleBatchLink)
	group.PUT("/:id/verify", h.HandleVerify)
}
