package checkout

import (
	"github.com/shopspring/decimal"

	"reviere_back_end/internal/models"
)

var hundred = decimal.NewFromInt(100)

// PricedLine est une ligne de commande résolue contre le catalogue.
type PricedLine struct {
	ProductID int64
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Found     bool
}

func (l PricedLine) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Quote struct {
	Lines    []PricedLine
	Coupon   *models.Coupon
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// TotalFloat retourne le total arrondi au centime.
func (q Quote) TotalFloat() float64 {
	f, _ := q.Total.Float64()
	return f
}

// Cents retourne le total en centimes, l'unité attendue par Stripe.
func (q Quote) Cents() int64 {
	return q.Total.Mul(hundred).Round(0).IntPart()
}

// Price calcule le total des lignes trouvées, remise du coupon en pourcentage déduite.
func Price(lines []PricedLine, coupon *models.Coupon) Quote {
	q := Quote{Lines: lines, Coupon: coupon, Subtotal: decimal.Zero, Discount: decimal.Zero}
	for _, l := range lines {
		if l.Found {
			q.Subtotal = q.Subtotal.Add(l.Amount())
		}
	}
	if coupon != nil && coupon.Discount > 0 {
		pct := decimal.NewFromFloat(coupon.Discount)
		if pct.GreaterThan(hundred) {
			pct = hundred
		}
		q.Discount = q.Subtotal.Mul(pct).Div(hundred).Round(2)
	}
	q.Total = q.Subtotal.Sub(q.Discount).Round(2)
	return q
}
