package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth/gothic"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v83"

	"reviere_back_end/internal/account"
	"reviere_back_end/internal/auth"
	"reviere_back_end/internal/cache"
	"reviere_back_end/internal/cart"
	"reviere_back_end/internal/catalog"
	"reviere_back_end/internal/checkout"
	"reviere_back_end/internal/config"
	"reviere_back_end/internal/coupon"
	"reviere_back_end/internal/database"
	"reviere_back_end/internal/handlers"
	"reviere_back_end/internal/logger"
	"reviere_back_end/internal/middleware"
	"reviere_back_end/internal/offer"
	"reviere_back_end/internal/review"
	"reviere_back_end/internal/services"
	"reviere_back_end/internal/store"
	"reviere_back_end/internal/store/memory"
	"reviere_back_end/internal/store/redisstore"
	"reviere_back_end/internal/store/scylla"
	"reviere_back_end/internal/utils"
)

// application regroupe les services câblés à partir de la configuration.
type application struct {
	cfg     *config.Config
	conns   *database.Connections
	cache   cache.Cache
	handler *handlers.Handler
	offers  *offer.Engine
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

func buildApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	if cfg.JWTSecret == "" && !cfg.AuthDisabled {
		return nil, errors.New("JWT_SECRET manquant")
	}
	conns, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var stores store.Stores
	if cfg.MemoryStore() {
		stores = memory.New()
		log.Warn("⚠️ Stockage en mémoire : les données seront perdues à l'arrêt")
	} else {
		stores = scylla.New(conns.Scylla)
	}

	var c cache.Cache = cache.NewMemory()
	if conns.Redis != nil {
		c = cache.NewRedis(conns.Redis)
		carts := redisstore.NewCarts(conns.Redis)
		stores.Carts, stores.CartFeed = carts, carts
	}
	if stores.Carts == nil {
		carts := memory.NewCarts()
		stores.Carts, stores.CartFeed = carts, carts
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	accounts := account.NewService(stores.Accounts, stores.Counter, tokens)

	// catalogue et moteur d'offres se référencent mutuellement
	var offers *offer.Engine
	catalogOpts := []catalog.Option{catalog.WithOffers(detachFunc(func(ctx context.Context, productID int64) error {
		return offers.DetachProduct(ctx, productID)
	}))}
	if conns.Elastic != nil {
		index := services.NewProductIndex(conns.Elastic, cfg.Elastic.Index)
		catalogOpts = append(catalogOpts, catalog.WithIndexer(index), catalog.WithSearcher(index))
	}
	products := catalog.NewService(stores.Products, stores.Counter, catalogOpts...)
	offers = offer.NewEngine(stores.Products, stores.Offers, stores.Counter, offer.WithReindexer(products))

	coupons := coupon.NewService(stores.Coupons, stores.Counter)

	finalizerOpts := []checkout.Option{checkout.WithUsers(accounts)}
	if cfg.SMTP.Host != "" {
		notifier := utils.NewNotifier(utils.NewMailer(cfg.SMTP), accounts, cfg.FrontendURL, cfg.SMTP.ReceiptPDF)
		finalizerOpts = append(finalizerOpts, checkout.WithNotifier(notifier))
		accounts.WithWelcomer(notifier)
	}
	finalizer := checkout.NewFinalizer(stores.Products, stores.Receipts, stores.Carts, stores.Counter, coupons, finalizerOpts...)

	h := &handlers.Handler{
		Catalog:     products,
		Collections: catalog.NewCollections(stores.Catalogs, stores.Products, stores.Counter),
		Offers:      offers,
		Coupons:     coupons,
		Carts:       cart.NewService(stores.Carts, stores.Products, coupons),
		CartFeed:    stores.CartFeed,
		Checkout:    finalizer,
		Reviews:     review.NewService(stores.Reviews, stores.Products, stores.Counter),
		Accounts:    accounts,
		OAuth:       auth.NewOAuthRegistry(cfg.OAuthConfigs()),
		Auth:        middleware.NewAuthenticator(tokens, c, cfg.AuthDisabled),
		FrontendURL: cfg.FrontendURL,
	}
	if conns.MinIO != nil {
		h.Photos = services.NewPhotoStore(conns.MinIO, cfg.MinIO)
	}
	if cfg.Stripe.SecretKey != "" {
		stripe.Key = cfg.Stripe.SecretKey
		gateway := services.NewStripeGateway(cfg.Stripe.Currency, cfg.Stripe.WebhookSecret)
		h.Payments = checkout.NewPayments(finalizer, gateway, c)
		log.Info("✅ Stripe initialisé")
	} else {
		log.Warn("⚠️ STRIPE_SECRET_KEY absent : paiements désactivés")
	}

	initGothic(cfg)

	return &application{cfg: cfg, conns: conns, cache: c, handler: h, offers: offers}, nil
}

type detachFunc func(ctx context.Context, productID int64) error

func (f detachFunc) DetachProduct(ctx context.Context, productID int64) error {
	return f(ctx, productID)
}

// initGothic configure le store de session du flux OAuth par redirection.
func initGothic(cfg *config.Config) {
	secret := cfg.SessionSecret
	if secret == "" {
		secret = cfg.JWTSecret
		log.Warn("⚠️ SESSION_SECRET manquant, utilisation de JWT_SECRET")
	}
	cookies := sessions.NewCookieStore([]byte(secret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.BaseURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = cookies

	gothic.GetProviderName = func(req *http.Request) (string, error) {
		if provider := req.URL.Query().Get("provider"); provider != "" {
			return provider, nil
		}
		return "", errors.New("provider not found")
	}
}

func (a *application) engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	routesRegister(r, a)
	return r
}

func (a *application) Close() {
	a.conns.Close()
}
