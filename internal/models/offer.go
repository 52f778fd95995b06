package models

import "time"

type Offer struct {
	ID         int64     `json:"id_oferta" db:"offer_id"`
	ProductID  int64     `json:"id_producto" db:"product_id"`
	Discount   float64   `json:"descuento" db:"discount"`
	OfferPrice float64   `json:"precio_oferta" db:"offer_price"`
	StartDate  time.Time `json:"fecha_inicio" db:"start_date"`
	EndDate    time.Time `json:"fecha_fin" db:"end_date"`
	Active     bool      `json:"estado" db:"active"`
	CreatedAt  time.Time `json:"fecha_reg" db:"created_at"`
	UpdatedAt  time.Time `json:"fecha_act" db:"updated_at"`
}

// Expired indique qu'une offre encore active a dépassé sa date de fin.
func (o Offer) Expired(now time.Time) bool {
	return o.Active && o.EndDate.Before(now)
}

// OfferView est la représentation renvoyée par GET /ofertas.
type OfferView struct {
	Offer
	ProductName string `json:"nombre_producto"`
}
