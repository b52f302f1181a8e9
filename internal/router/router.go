package router

import (
	"github.com/gin-gonic/gin"
	"github.com/nimoapp/nimo-backend/config"
	"github.com/nimoapp/nimo-backend/internal/app/controller"
	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/internal/middleware"
)

type Router struct {
	authController     *controller.AuthController
	sessionController  *controller.SessionController
	productController  *controller.ProductController
	categoryController *controller.CategoryController
	cartController     *controller.CartController
	orderController    *controller.OrderController
	reviewController   *controller.ReviewController
	partnerController  *controller.PartnerController
	adminController    *controller.AdminController
	uploadController   *controller.UploadController
	wsController       *controller.WebSocketController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	sessionController *controller.SessionController,
	productController *controller.ProductController,
	categoryController *controller.CategoryController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	reviewController *controller.ReviewController,
	partnerController *controller.PartnerController,
	adminController *controller.AdminController,
	uploadController *controller.UploadController,
	wsController *controller.WebSocketController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		sessionController:  sessionController,
		productController:  productController,
		categoryController: categoryController,
		cartController:     cartController,
		orderController:    orderController,
		reviewController:   reviewController,
		partnerController:  partnerController,
		adminController:    adminController,
		uploadController:   uploadController,
		wsController:       wsController,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "NIMO API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)

			auth.GET("/google/login", r.sessionController.GoogleLogin)
			auth.GET("/google/callback", r.sessionController.GoogleCallback)
			auth.POST("/session/login", r.sessionController.SessionLogin)
			auth.GET("/session", r.sessionController.GetSession)
			auth.POST("/session/refresh", r.sessionController.RefreshSession)
			auth.POST("/session/logout", r.sessionController.SessionLogout)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.List)
			products.GET("/:id", r.productController.GetByID)
			products.GET("/:id/reviews", r.productController.ListReviews)
		}

		v1.GET("/categories", r.categoryController.List)
		v1.GET("/umkm/:id", r.productController.GetUmkm)

		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.Authenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("/items", r.cartController.AddItem)
			cart.PUT("/items/:id", r.cartController.UpdateItem)
			cart.DELETE("/items/:id", r.cartController.RemoveItem)
			cart.DELETE("", r.cartController.Clear)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.POST("", r.orderController.Create)
			orders.GET("", r.orderController.List)
			orders.GET("/:id", r.orderController.GetByID)
			orders.POST("/:id/cancel", r.orderController.Cancel)
		}

		v1.POST("/reviews",
			r.authMiddleware.Authenticate(),
			r.reviewController.Create,
		)

		partner := v1.Group("/partner")
		partner.Use(r.authMiddleware.Authenticate())
		{
			// Any signed-in customer can apply.
			partner.POST("/apply", r.partnerController.Apply)

			// Partner mutations gate on the database role, not the one
			// embedded in the credential, plus a verified profile.
			verified := partner.Group("")
			verified.Use(
				r.authMiddleware.RequireFreshRole(string(model.RoleUmkmOwner)),
				r.authMiddleware.RequireVerifiedPartner(),
			)
			{
				verified.GET("/dashboard", r.partnerController.GetDashboard)
				verified.GET("/products", r.partnerController.ListProducts)
				verified.POST("/products", r.partnerController.CreateProduct)
				verified.PUT("/products/:id", r.partnerController.UpdateProduct)
				verified.DELETE("/products/:id", r.partnerController.DeleteProduct)
				verified.GET("/orders", r.partnerController.ListOrders)
				verified.PUT("/orders/:id/status", r.partnerController.UpdateOrderStatus)
			}
		}

		admin := v1.Group("/admin")
		admin.Use(
			r.authMiddleware.Authenticate(),
			r.authMiddleware.RequireFreshRole(string(model.RoleAdmin)),
		)
		{
			admin.GET("/users", r.adminController.ListUsers)
			admin.GET("/umkm-owners", r.adminController.ListUmkm)
			admin.PUT("/umkm-owners/:id/verify", r.adminController.VerifyUmkm)
			admin.GET("/orders", r.adminController.ListOrders)
			admin.GET("/reports/sales", r.adminController.SalesReport)

			admin.POST("/categories", r.categoryController.Create)
			admin.PUT("/categories/:id", r.categoryController.Update)
			admin.DELETE("/categories/:id", r.categoryController.Delete)
		}

		uploads := v1.Group("/uploads")
		uploads.Use(r.authMiddleware.Authenticate())
		{
			uploads.POST("/presign", r.uploadController.Presign)
		}

		v1.GET("/ws",
			r.authMiddleware.Authenticate(),
			r.wsController.Connect,
		)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
