// Package routes wires services into the gin router.
package routes

import (
	"context"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dkstore_back_end/internal/auth"
	"dkstore_back_end/internal/cache"
	"dkstore_back_end/internal/cart"
	"dkstore_back_end/internal/catalog"
	"dkstore_back_end/internal/checkout"
	"dkstore_back_end/internal/config"
	"dkstore_back_end/internal/database"
	"dkstore_back_end/internal/handlers"
	"dkstore_back_end/internal/handlers/admin"
	"dkstore_back_end/internal/handlers/product"
	"dkstore_back_end/internal/handlers/user"
	"dkstore_back_end/internal/middleware"
	"dkstore_back_end/internal/orders"
	"dkstore_back_end/internal/users"
	"dkstore_back_end/internal/utils"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	DB       *gorm.DB
	Redis    *cache.Redis
	Tokens   *auth.TokenManager
	Catalog  *catalog.Service
	Cart     *cart.Service
	Checkout *checkout.Engine
	Orders   *orders.Service
	Users    *users.Service
	Audit    *utils.AuditRecorder
	Images   product.ImageStorage

	MaxUploadSize int64
	CORSOrigins   []string
	Started       time.Time
}

// NewDeps builds the services on top of the shared connections. redis may be nil.
func NewDeps(cfg *config.Config, db *gorm.DB, redis *cache.Redis, images product.ImageStorage) Deps {
	mailer := utils.NewMailer(cfg.SMTP)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	cat := catalog.NewService(db, redis)

	return Deps{
		DB:            db,
		Redis:         redis,
		Tokens:        tokens,
		Catalog:       cat,
		Cart:          cart.NewService(db, cat, redis),
		Checkout:      checkout.NewEngine(db, redis, mailer),
		Orders:        orders.NewService(db, mailer),
		Users:         users.NewService(db, tokens),
		Audit:         utils.NewAuditRecorder(db),
		Images:        images,
		MaxUploadSize: cfg.MaxUploadSize,
		CORSOrigins:   cfg.CORSOrigins,
		Started:       time.Now(),
	}
}

// NewRouter returns a gin engine with the global middleware and every route.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = d.CORSOrigins
	corsCfg.AllowCredentials = true
	corsCfg.AddAllowHeaders("Authorization", middleware.HeaderRequestID)
	corsCfg.AddExposeHeaders(middleware.HeaderRequestID, "Retry-After", "X-RateLimit-Remaining")
	if len(d.CORSOrigins) == 0 || slices.Contains(d.CORSOrigins, "*") {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	if d.MaxUploadSize > 0 {
		r.MaxMultipartMemory = d.MaxUploadSize
	}

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	authRequired := middleware.AuthRequired(d.Tokens)
	adminOnly := []gin.HandlerFunc{authRequired, middleware.RequireAdmin}
	audited := func(action, resource string) gin.HandlerFunc {
		return middleware.AuditCriticalActions(d.Audit, action, resource)
	}
	with := func(chain []gin.HandlerFunc, more ...gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, chain...), more...)
	}

	r.GET("/", handlers.Banner)
	r.GET("/health", handlers.Health(func(ctx context.Context) error {
		return database.Ping(ctx, d.DB)
	}, d.Started))
	r.NoRoute(handlers.NotFound)

	api := r.Group("/api")

	categories := product.NewCategoryHandler(d.Catalog)
	cat := api.Group("/categories")
	cat.GET("", categories.ListCategories)
	cat.GET("/:id", categories.GetCategory)
	cat.GET("/:id/products", categories.CategoryProducts)
	cat.POST("", with(adminOnly, audited(utils.ActionCategoryCreate, utils.ResourceCategory), categories.CreateCategory)...)

	products := product.NewProductHandler(d.Catalog)
	inventory := product.NewInventoryHandler(d.Catalog)
	prod := api.Group("/products")
	prod.GET("", products.ListProducts)
	prod.GET("/:id", products.GetProduct)
	prod.POST("", with(adminOnly, audited(utils.ActionProductCreate, utils.ResourceProduct), products.CreateProduct)...)
	prod.PUT("/:id", with(adminOnly, audited(utils.ActionProductUpdate, utils.ResourceProduct), products.UpdateProduct)...)
	prod.DELETE("/:id", with(adminOnly, audited(utils.ActionProductDelete, utils.ResourceProduct), products.DeleteProduct)...)
	prod.PATCH("/:id/stock", with(adminOnly, audited(utils.ActionStockUpdate, utils.ResourceInventory), inventory.UpdateStock)...)

	inv := api.Group("/inventory", adminOnly...)
	inv.GET("/movements", inventory.ListMovements)
	inv.GET("/low-stock", inventory.LowStock)

	account := user.NewAuthHandler(d.Users, d.Audit)
	usr := api.Group("/users")
	usr.POST("/register", account.Register)
	usr.POST("/login", middleware.LoginRateLimit(d.Redis), account.Login)
	usr.GET("/profile", authRequired, account.Profile)

	carts := user.NewCartHandler(d.Cart, d.Redis)
	myOrders := user.NewOrderHandler(d.Checkout, d.Orders)
	adminOrders := admin.NewOrderHandler(d.Orders)
	ord := api.Group("/orders", authRequired)
	{
		c := ord.Group("/cart")
		limited := middleware.CartRateLimit(d.Redis)
		c.GET("", carts.GetCart)
		c.GET("/ws", carts.CartWebSocket)
		c.POST("/add", limited, carts.AddToCart)
		c.PUT("/:itemId", limited, carts.UpdateCartItem)
		c.DELETE("/:itemId", limited, carts.RemoveFromCart)
		c.DELETE("", limited, carts.ClearCart)

		ord.POST("/checkout", myOrders.Checkout)
		ord.GET("", myOrders.ListOrders)

		ord.GET("/admin/all", middleware.RequireAdmin, adminOrders.GetAllOrders)
		ord.GET("/admin/stats", middleware.RequireAdmin, adminOrders.GetOrderStats)

		ord.GET("/:orderId", myOrders.GetOrder)
		ord.PUT("/:orderId/status", middleware.RequireAdmin,
			audited(utils.ActionOrderStatusUpdate, utils.ResourceOrder), adminOrders.UpdateOrderStatus)
	}

	images := product.NewImageHandler(d.Catalog, d.Images, d.MaxUploadSize)
	up := api.Group("/uploads/products/:productId/images")
	up.GET("", images.ListImages)
	up.POST("", with(adminOnly, audited(utils.ActionImageUpload, utils.ResourceImage), images.UploadImages)...)
	up.DELETE("/:imageId", with(adminOnly, audited(utils.ActionImageDelete, utils.ResourceImage), images.DeleteImage)...)
	up.PUT("/:imageId/primary", with(adminOnly, audited(utils.ActionImageSetPrimary, utils.ResourceImage), images.SetPrimary)...)

	auditLogs := admin.NewAuditHandler(d.Audit)
	api.GET("/admin/audit-logs", with(adminOnly, auditLogs.GetAuditLogs)...)
}
