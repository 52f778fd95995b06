package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviere_back_end/internal/cache"
	"reviere_back_end/internal/handlers"
	"reviere_back_end/internal/middleware"
	"reviere_back_end/internal/models"
)

type Options struct {
	CORSOrigins        []string
	RateLimitPerMinute int
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, c cache.Cache, opts Options) {
	r.Use(middleware.RequestLogger())
	if len(opts.CORSOrigins) > 0 {
		r.Use(middleware.CORS(opts.CORSOrigins))
	}
	r.Use(middleware.RateLimit(c, opts.RateLimitPerMinute))

	authn := h.Auth
	private := authn.Required()
	staff := authn.RequireRole(models.AccountCompany, models.AccountEmployee)
	company := authn.RequireRole(models.AccountCompany)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Comptes
	loginLimit := middleware.LoginRateLimit(c)
	r.POST("/registro", h.RegisterUser)
	r.POST("/registro/empresa", h.RegisterCompany)
	r.POST("/registro/empleado", private, company, h.RegisterEmployee)
	r.POST("/login", loginLimit, h.LoginUser)
	r.POST("/login/empresa", loginLimit, h.LoginCompany)
	r.POST("/login/empleado", loginLimit, h.LoginEmployee)
	r.POST("/logout", private, h.Logout)
	r.GET("/empresas", h.ListCompanies)

	usuarios := r.Group("/usuarios", private)
	{
		usuarios.GET("", h.ListUsers)
		usuarios.PUT("/:id", h.UpdateUser)
		usuarios.DELETE("/:id", h.DeleteUser)
	}

	// OAuth
	oauth := r.Group("/auth")
	{
		oauth.GET("/providers", h.ListProviders)
		oauth.POST("/:provider", h.OAuthExchange)
		oauth.GET("/:provider/login", h.BeginAuth)
		oauth.GET("/:provider/callback", h.CallbackAuth)
	}

	// Produits
	productos := r.Group("/productos")
	{
		productos.GET("", h.ListProducts)
		productos.GET("/buscar", h.SearchProducts)
		productos.GET("/:id", h.GetProduct)
		productos.GET("/:id/foto", h.ProductPhoto)
		productos.POST("", private, staff, h.CreateProduct)
		productos.PUT("/:id", private, staff, h.UpdateProduct)
		productos.DELETE("/:id", private, staff, h.DeleteProduct)
	}

	ofertas := r.Group("/ofertas")
	{
		ofertas.GET("", h.ListOffers)
		ofertas.GET("/:id", h.GetOffer)
		ofertas.POST("", private, staff, h.CreateOffer)
		ofertas.PUT("/:id", private, staff, h.UpdateOffer)
		ofertas.DELETE("/:id", private, staff, h.DeleteOffer)
	}

	catalogo := r.Group("/catalogo")
	{
		catalogo.GET("", h.ListCollections)
		catalogo.GET("/:id", h.GetCollection)
		catalogo.POST("", private, staff, h.CreateCollection)
		catalogo.PUT("/:id", private, staff, h.UpdateCollection)
		catalogo.DELETE("/:id", private, staff, h.DeleteCollection)
	}

	cupones := r.Group("/cupones")
	{
		cupones.GET("", h.ListCoupons)
		cupones.GET("/:id", h.GetCoupon)
		cupones.POST("", private, staff, h.CreateCoupon)
		cupones.PUT("/:id", private, staff, h.UpdateCoupon)
		cupones.DELETE("/:id", private, staff, h.DeleteCoupon)
	}

	resenas := r.Group("/resenas")
	{
		resenas.GET("", h.ListReviews)
		resenas.POST("", private, h.CreateReview)
		resenas.PUT("/:id", private, h.UpdateReview)
		resenas.DELETE("/:id", private, h.DeleteReview)
	}

	// Panier
	carrito := r.Group("/carrito/:id_usuario", private)
	{
		carrito.GET("", h.GetCart)
		carrito.PUT("", h.ReplaceCart)
		carrito.POST("", h.AddCartItem)
		carrito.DELETE("", h.ClearCart)
		carrito.PUT("/:id_producto", h.SetCartItemQuantity)
		carrito.DELETE("/:id_producto", h.RemoveCartItem)
		carrito.POST("/aplicar-cupon", h.ApplyCoupon)
		carrito.GET("/ws", h.CartWebSocket)
	}

	recibos := r.Group("/recibos", private)
	{
		recibos.GET("", h.ListReceipts)
		recibos.GET("/:id", h.GetReceipt)
		recibos.POST("", h.CreateReceipt)
		recibos.DELETE("/:id", h.DeleteReceipt)
	}

	// Paiements ; le webhook est authentifié par sa signature
	r.POST("/pagos/intent", private, h.CreatePaymentIntent)
	r.POST("/pagos/webhook", h.StripeWebhook)
}
