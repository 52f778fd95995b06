// Package cart agrège les lignes du panier d'un utilisateur et le coupon appliqué.
// Chaque mutation est une lecture-modification-écriture atomique côté stockage.
package cart

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"reviere_back_end/internal/apperr"
	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

var (
	ErrCartNotFound     = apperr.NotFound("Carrito no encontrado")
	ErrItemNotFound     = apperr.NotFound("Producto no encontrado en el carrito")
	ErrProductNotFound  = apperr.NotFound("Producto no encontrado")
	ErrInvalidQuantity  = apperr.Validation("La cantidad debe ser mayor a 0")
	ErrProductRequired  = apperr.Validation("El id_producto es obligatorio")
	ErrCouponCodeNeeded = apperr.Validation("El código del cupón es obligatorio")
)

// ProductReader fournit l'instantané du produit ajouté au panier.
type ProductReader interface {
	Get(ctx context.Context, id int64) (*models.Product, error)
}

// CouponRedeemer valide un code au moment de l'application.
type CouponRedeemer interface {
	Redeemable(ctx context.Context, code string) (*models.Coupon, error)
}

type AddItemRequest struct {
	ProductID   int64   `json:"id_producto"`
	Quantity    int     `json:"cantidad"`
	Name        string  `json:"nombre"`
	Price       float64 `json:"precio"`
	Photo       string  `json:"foto"`
	IsPromotion bool    `json:"esPromocion"`
}

type ReplaceRequest struct {
	Items         []models.CartItem `json:"productos"`
	AppliedCoupon *models.Coupon    `json:"cupon_aplicado"`
}

type Service struct {
	carts    store.CartStore
	products ProductReader
	coupons  CouponRedeemer
}

func NewService(carts store.CartStore, products ProductReader, coupons CouponRedeemer) *Service {
	return &Service{carts: carts, products: products, coupons: coupons}
}

// Get retourne le panier, créé vide s'il n'existait pas.
func (s *Service) Get(ctx context.Context, userID int64) (*models.Cart, error) {
	c, err := s.carts.Get(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Upstream("get cart", err)
	}
	c, err = s.carts.Mutate(ctx, userID, true, func(*models.Cart) error { return nil })
	if err != nil {
		return nil, apperr.Upstream("create cart", err)
	}
	log.WithField("user_id", userID).Info("🛒 Panier créé")
	return c, nil
}

// Replace remplace tout le contenu du panier. Les lignes d'un même produit sont fusionnées.
// Du coupon transmis seul le code compte : la remise est relue dans le stockage.
func (s *Service) Replace(ctx context.Context, userID int64, req ReplaceRequest) (*models.Cart, error) {
	items := make([]models.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID <= 0 {
			return nil, ErrProductRequired
		}
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		items = mergeItem(items, item)
	}

	var snapshot *models.Coupon
	if req.AppliedCoupon != nil && req.AppliedCoupon.Code != "" {
		coupon, err := s.coupons.Redeemable(ctx, req.AppliedCoupon.Code)
		if err != nil {
			return nil, err
		}
		stored := *coupon
		snapshot = &stored
	}

	c, err := s.carts.Mutate(ctx, userID, true, func(c *models.Cart) error {
		c.Items = items
		c.AppliedCoupon = snapshot
		return nil
	})
	if err != nil {
		return nil, apperr.Upstream("replace cart", err)
	}
	return c, nil
}

// AddItem ajoute une ligne ou cumule la quantité si le produit est déjà présent.
// Les champs d'affichage manquants sont complétés depuis le catalogue.
func (s *Service) AddItem(ctx context.Context, userID int64, req AddItemRequest) (*models.Cart, error) {
	if req.ProductID <= 0 {
		return nil, ErrProductRequired
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.products.Get(ctx, req.ProductID)
	if err != nil {
		if apperr.IsNotFound(err) || errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, apperr.Upstream("get product", err)
	}

	item := models.CartItem{
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		Name:        req.Name,
		Price:       req.Price,
		Photo:       req.Photo,
		IsPromotion: req.IsPromotion || p.OnOffer,
	}
	if item.Name == "" {
		item.Name = p.Name
	}
	if item.Price == 0 {
		item.Price = p.Price
	}
	if item.Photo == "" {
		item.Photo = p.Photo
	}

	c, err := s.carts.Mutate(ctx, userID, true, func(c *models.Cart) error {
		c.Items = mergeItem(c.Items, item)
		return nil
	})
	if err != nil {
		return nil, apperr.Upstream("add cart item", err)
	}
	log.WithFields(log.Fields{"user_id": userID, "product_id": req.ProductID, "quantity": req.Quantity}).
		Debug("🛒 Produit ajouté au panier")
	return c, nil
}

// RemoveItem retire la ligne du produit ; sans effet si elle est absente.
func (s *Service) RemoveItem(ctx context.Context, userID, productID int64) (*models.Cart, error) {
	c, err := s.carts.Mutate(ctx, userID, false, func(c *models.Cart) error {
		if i := c.Find(productID); i >= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
		return nil
	})
	return c, cartErr("remove cart item", err)
}

// SetItemQuantity fixe la quantité d'une ligne ; 0 retire la ligne.
func (s *Service) SetItemQuantity(ctx context.Context, userID, productID int64, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	c, err := s.carts.Mutate(ctx, userID, false, func(c *models.Cart) error {
		i := c.Find(productID)
		if i < 0 {
			return ErrItemNotFound
		}
		if quantity == 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
		c.Items[i].Quantity = quantity
		return nil
	})
	return c, cartErr("set cart item quantity", err)
}

// Clear vide le panier et retire le coupon.
func (s *Service) Clear(ctx context.Context, userID int64) (*models.Cart, error) {
	c, err := s.carts.Mutate(ctx, userID, false, func(c *models.Cart) error {
		c.Clear()
		return nil
	})
	return c, cartErr("clear cart", err)
}

// Reset vide le panier après un checkout, en le créant au besoin.
func (s *Service) Reset(ctx context.Context, userID int64) error {
	_, err := s.carts.Mutate(ctx, userID, true, func(c *models.Cart) error {
		c.Clear()
		return nil
	})
	if err != nil {
		return apperr.Upstream("reset cart", err)
	}
	return nil
}

// ApplyCoupon enregistre une copie du coupon dans le panier. En cas d'échec
// le panier n'est pas modifié.
func (s *Service) ApplyCoupon(ctx context.Context, userID int64, code string) (*models.Cart, *models.Coupon, error) {
	if code == "" {
		return nil, nil, ErrCouponCodeNeeded
	}
	coupon, err := s.coupons.Redeemable(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	snapshot := *coupon
	c, err := s.carts.Mutate(ctx, userID, true, func(c *models.Cart) error {
		c.AppliedCoupon = &snapshot
		return nil
	})
	if err != nil {
		return nil, nil, apperr.Upstream("apply coupon", err)
	}
	log.WithFields(log.Fields{"user_id": userID, "code": code}).Info("🎟️ Coupon appliqué au panier")
	return c, coupon, nil
}

func mergeItem(items []models.CartItem, item models.CartItem) []models.CartItem {
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			return items
		}
	}
	return append(items, item)
}

func cartErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return ErrCartNotFound
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Upstream(op, err)
}
