// Package store déclare les contrats de persistance consommés par les services.
// Deux implémentations existent : scylla (+ redisstore pour les paniers) et memory.
package store

import (
	"context"
	"errors"
	"time"

	"reviere_back_end/internal/models"
)

// Espaces de noms des compteurs séquentiels.
const (
	NSProducts  = "products"
	NSOffers    = "offers"
	NSCoupons   = "coupons"
	NSReceipts  = "receipts"
	NSReviews   = "reviews"
	NSUsers     = "users"
	NSCompanies = "companies"
	NSEmployees = "employees"
	NSCatalogs  = "catalogs"
)

var (
	ErrNotFound          = errors.New("store: not found")
	ErrAlreadyExists     = errors.New("store: already exists")
	ErrInsufficientStock = errors.New("store: insufficient stock")
	ErrContention        = errors.New("store: too many concurrent writers")
	ErrConditionFailed   = errors.New("store: condition not met")
)

// Counter alloue des identifiants denses par espace de noms.
type Counter interface {
	NextID(ctx context.Context, namespace string) (int64, error)
}

type ProductFilter struct {
	CompanyID *int64
}

type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	Get(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	// UpdateDetails écrit les champs descriptifs ; jamais stock, price, original_price ni on_offer.
	UpdateDetails(ctx context.Context, p *models.Product) error
	// SetStock fixe le stock à une valeur absolue demandée explicitement.
	SetStock(ctx context.Context, id int64, stock int) error
	// UpdatePrice change le prix d'un produit hors offre ; ErrConditionFailed s'il est en offre.
	UpdatePrice(ctx context.Context, id int64, price float64) error
	Delete(ctx context.Context, id int64) error
	// AdjustStock applique delta de façon conditionnelle et retourne le nouveau stock.
	AdjustStock(ctx context.Context, id int64, delta int) (int, error)
	// SetPricing est réservé au moteur d'offres.
	SetPricing(ctx context.Context, id int64, price float64, originalPrice *float64, onOffer bool) error
}

type OfferStore interface {
	Create(ctx context.Context, o *models.Offer) error
	Get(ctx context.Context, id int64) (*models.Offer, error)
	List(ctx context.Context) ([]models.Offer, error)
	ListByProduct(ctx context.Context, productID int64) ([]models.Offer, error)
	ListExpired(ctx context.Context, now time.Time) ([]models.Offer, error)
	Update(ctx context.Context, o *models.Offer) error
	// Deactivate passe active de true à false si la date de fin vaut toujours
	// endDate, et indique si cet appel l'a fait.
	Deactivate(ctx context.Context, id int64, endDate time.Time) (bool, error)
	Delete(ctx context.Context, id int64) error
	// ClaimProduct réserve le produit pour une offre active ; ErrAlreadyExists si
	// une autre offre le détient déjà.
	ClaimProduct(ctx context.Context, productID, offerID int64) error
	ReleaseProduct(ctx context.Context, productID, offerID int64) error
}

type CouponStore interface {
	// Create retourne ErrAlreadyExists si le code est déjà pris.
	Create(ctx context.Context, c *models.Coupon) error
	Get(ctx context.Context, id int64) (*models.Coupon, error)
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	Update(ctx context.Context, c *models.Coupon) error
	Delete(ctx context.Context, id int64) error
}

type CartStore interface {
	Get(ctx context.Context, userID int64) (*models.Cart, error)
	// Mutate exécute fn sur le panier en lecture-modification-écriture atomique.
	// Sans create, un panier absent donne ErrNotFound.
	Mutate(ctx context.Context, userID int64, create bool, fn func(*models.Cart) error) (*models.Cart, error)
}

// CartFeed diffuse un signal à chaque modification d'un panier.
type CartFeed interface {
	Subscribe(ctx context.Context, userID int64) (<-chan struct{}, func(), error)
}

type ReceiptStore interface {
	Create(ctx context.Context, r *models.Receipt) error
	Get(ctx context.Context, id int64) (*models.Receipt, error)
	List(ctx context.Context) ([]models.Receipt, error)
	Delete(ctx context.Context, id int64) error
}

type ReviewStore interface {
	Create(ctx context.Context, r *models.Review) error
	Get(ctx context.Context, id int64) (*models.Review, error)
	List(ctx context.Context, productID *int64) ([]models.Review, error)
	Update(ctx context.Context, r *models.Review) error
	Delete(ctx context.Context, id int64) error
}

type CollectionStore interface {
	Create(ctx context.Context, c *models.Collection) error
	Get(ctx context.Context, id int64) (*models.Collection, error)
	List(ctx context.Context) ([]models.Collection, error)
	Update(ctx context.Context, c *models.Collection) error
	Delete(ctx context.Context, id int64) error
}

type AccountStore interface {
	// Create retourne ErrAlreadyExists si l'email est déjà pris pour ce type de compte.
	Create(ctx context.Context, a *models.Account) error
	Get(ctx context.Context, kind string, id int64) (*models.Account, error)
	GetByEmail(ctx context.Context, kind, email string) (*models.Account, error)
	List(ctx context.Context, kind string) ([]models.Account, error)
	Update(ctx context.Context, a *models.Account) error
	Delete(ctx context.Context, kind string, id int64) error
}

// Stores regroupe les dépôts câblés au démarrage.
type Stores struct {
	Counter  Counter
	Products ProductStore
	Offers   OfferStore
	Coupons  CouponStore
	Carts    CartStore
	CartFeed CartFeed
	Receipts ReceiptStore
	Reviews  ReviewStore
	Accounts AccountStore
	Catalogs CollectionStore
}
