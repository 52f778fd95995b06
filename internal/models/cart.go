package models

import "time"

type Cart struct {
	UserID        int64      `json:"id_usuario"`
	Items         []CartItem `json:"productos"`
	AppliedCoupon *Coupon    `json:"cupon_aplicado"`
	UpdatedAt     time.Time  `json:"fecha_act"`
}

// CartItem garde un instantané du produit au moment de l'ajout.
type CartItem struct {
	ProductID   int64   `json:"id_producto"`
	Quantity    int     `json:"cantidad"`
	Name        string  `json:"nombre"`
	Price       float64 `json:"precio"`
	Photo       string  `json:"foto"`
	IsPromotion bool    `json:"esPromocion"`
}

func NewCart(userID int64) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}}
}

// Find retourne l'index de la ligne du produit, -1 si absente.
func (c *Cart) Find(productID int64) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.AppliedCoupon = nil
}
