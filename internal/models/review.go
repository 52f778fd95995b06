package models

import "time"

type Review struct {
	ID        int64     `json:"id_resena" db:"review_id"`
	ProductID int64     `json:"id_producto" db:"product_id"`
	UserID    int64     `json:"id_usuario" db:"user_id"`
	Rating    int       `json:"calificacion" db:"rating"`
	Comment   string    `json:"comentario" db:"comment"`
	Date      time.Time `json:"fecha" db:"created_at"`
}
