package models

import "time"

// Product est une fiche du catalogue. OriginalPrice n'est renseigné que
// pendant qu'une offre active remplace le prix.
type Product struct {
	ID            int64     `json:"id_producto" db:"product_id"`
	CompanyID     int64     `json:"id_empresa" db:"company_id"`
	Name          string    `json:"nombre" db:"name"`
	Description   string    `json:"descripcion" db:"description"`
	Price         float64   `json:"precio" db:"price"`
	OriginalPrice *float64  `json:"precio_original" db:"original_price"`
	OnOffer       bool      `json:"en_oferta" db:"on_offer"`
	Stock         int       `json:"stock" db:"stock"`
	Category      string    `json:"categoria" db:"category"`
	Photo         string    `json:"foto" db:"photo"`
	CreatedAt     time.Time `json:"fecha_reg" db:"created_at"`
	UpdatedAt     time.Time `json:"fecha_act" db:"updated_at"`
}
