package models

import "time"

type Coupon struct {
	ID             int64     `json:"id_cupon" db:"coupon_id"`
	Code           string    `json:"codigo" db:"code"`
	Discount       float64   `json:"descuento" db:"discount"`
	ExpirationDate time.Time `json:"fecha_expiracion" db:"expiration_date"`
	CreatedAt      time.Time `json:"fecha_reg" db:"created_at"`
}

func (c Coupon) Expired(now time.Time) bool {
	return !c.ExpirationDate.IsZero() && c.ExpirationDate.Before(now)
}
