package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"gateworks-backend/config"
	"gateworks-backend/controllers"
	"gateworks-backend/models"
	"gateworks-backend/utils"
)

// Handlers carries the controllers that depend on injected services.
type Handlers struct {
	AllowedOrigins []string
	JWT            *utils.JWTManager
	// LocalMediaRoot is served under /public when images live on local disk.
	LocalMediaRoot string
	MaxUploadBytes int64

	Auth      *controllers.AuthController
	Client    *controllers.ClientController
	Profile   *controllers.ProfileController
	Facility  *controllers.FacilityController
	Catalog   *controllers.CatalogController
	Media     *controllers.MediaController
	Reminder  *controllers.ReminderController
	Report    *controllers.ReportController
	Dashboard *controllers.DashboardController
	Health    *controllers.HealthController
	Cart      *controllers.CartController
}

func SetupRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	origins := h.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Accept-Language"},
		ExposeHeaders:    []string{"Content-Length", "Content-Language"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	if h.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = h.MaxUploadBytes
	}
	if h.LocalMediaRoot != "" {
		r.Static("/public", h.LocalMediaRoot)
	}

	r.GET("/health", h.Health.Check)

	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.Auth.SignUp)
		auth.POST("/sign-in", h.Auth.SignIn)
		auth.POST("/sign-out", h.Auth.SignOut)

		auth.Use(h.JWT.AuthMiddleware())
		auth.GET("/me", h.Auth.Me)

		profile := auth.Group("/profile", controllers.RequireCapability(models.CapEditOwnProfile))
		{
			profile.PUT("", h.Profile.UpdateProfile)
			profile.PUT("/password", h.Profile.ChangePassword)
		}
	}

	api := r.Group("/api")

	// Invoked by the external daily trigger.
	api.GET("/cron/maintenance-reminders", h.Reminder.RunMaintenanceReminders)

	public := api.Group("/public")
	{
		cart := public.Group("/cart/:id")
		{
			cart.GET("", h.Cart.GetCart)
			cart.POST("/items", h.Cart.AddItem)
			cart.PUT("/items/:productId", h.Cart.SetQuantity)
			cart.DELETE("/items/:productId", h.Cart.RemoveItem)
			cart.DELETE("", h.Cart.ClearCart)
		}

		localized := public.Group("/:locale", controllers.LocaleMiddleware())
		{
			localized.GET("/products", controllers.ListPublicProducts)
			localized.GET("/products/:slug", controllers.GetPublicProduct)
			localized.GET("/categories", controllers.ListPublicCategories)
			localized.GET("/categories/:slug/products", controllers.ListCategoryProducts)
			localized.GET("/services", controllers.ListPublicServices)
			localized.GET("/services/:slug", controllers.GetPublicService)
			localized.GET("/works", controllers.ListPublicWorks)
			localized.GET("/works/:slug", controllers.GetPublicWork)
		}
	}

	admin := api.Group("/admin")
	admin.Use(h.JWT.AuthMiddleware())
	{
		clients := admin.Group("/clients", controllers.RequireCapability(models.CapManageClients))
		{
			clients.POST("", h.Client.CreateClient)
			clients.GET("", h.Client.GetClients)
			clients.GET("/:id", h.Client.GetClient)
			clients.PUT("/:id", h.Client.UpdateClient)
			clients.DELETE("/:id", h.Client.DeleteClient)
		}

		facilities := admin.Group("/facilities", controllers.RequireCapability(models.CapManageFacilities))
		{
			facilities.POST("", h.Facility.CreateFacility)
			facilities.GET("", h.Facility.GetFacilities)
			facilities.GET("/upcoming", h.Facility.GetUpcomingMaintenance)
			facilities.GET("/:id", h.Facility.GetFacility)
			facilities.PUT("/:id", h.Facility.UpdateFacility)
			facilities.PATCH("/:id/report", h.Facility.UpdateFacilityReport)
			facilities.DELETE("/:id", h.Facility.DeleteFacility)
		}

		catalog := admin.Group("", controllers.RequireCapability(models.CapManageCatalog))
		{
			catalog.POST("/categories", h.Catalog.CreateCategory)
			catalog.GET("/categories", h.Catalog.GetCategories)
			catalog.GET("/categories/:id", h.Catalog.GetCategory)
			catalog.PUT("/categories/:id", h.Catalog.UpdateCategory)
			catalog.DELETE("/categories/:id", h.Catalog.DeleteCategory)

			catalog.POST("/products", h.Catalog.CreateProduct)
			catalog.GET("/products", h.Catalog.GetProducts)
			catalog.GET("/products/:id", h.Catalog.GetProduct)
			catalog.PUT("/products/:id", h.Catalog.UpdateProduct)
			catalog.DELETE("/products/:id", h.Catalog.DeleteProduct)

			catalog.POST("/services", h.Catalog.CreateService)
			catalog.GET("/services", h.Catalog.GetServices)
			catalog.GET("/services/:id", h.Catalog.GetService)
			catalog.PUT("/services/:id", h.Catalog.UpdateService)
			catalog.DELETE("/services/:id", h.Catalog.DeleteService)

			catalog.POST("/works", h.Catalog.CreateWork)
			catalog.GET("/works", h.Catalog.GetWorks)
			catalog.GET("/works/:id", h.Catalog.GetWork)
			catalog.PUT("/works/:id", h.Catalog.UpdateWork)
			catalog.DELETE("/works/:id", h.Catalog.DeleteWork)
		}

		uploads := admin.Group("/uploads", controllers.RequireCapability(models.CapUploadMedia))
		{
			uploads.POST("/:folder", h.Media.Upload)
			uploads.DELETE("", h.Media.Delete)
		}

		admin.GET("/reminders", controllers.RequireCapability(models.CapManageFacilities), controllers.GetReminderLogs)
		admin.GET("/dashboard", controllers.RequireCapability(models.CapViewDashboard), h.Dashboard.GetDashboardOverview)
		admin.GET("/reports/maintenance", controllers.RequireCapability(models.CapViewDashboard), h.Report.GetMaintenanceReport)
	}

	return r
}
