package models

import "time"

// Receipt est immuable une fois émis.
type Receipt struct {
	ID         int64     `json:"id_recibo" db:"receipt_id"`
	UserID     int64     `json:"id_usuario" db:"user_id"`
	EmittedAt  time.Time `json:"fecha_emi" db:"emitted_at"`
	Detail     string    `json:"detalle" db:"detail"`
	TotalPrice float64   `json:"precio_total" db:"total_price"`
}

type ReceiptView struct {
	Receipt
	UserName string `json:"nombre_usuario"`
}

// ReceiptLine est une ligne soumise au checkout.
type ReceiptLine struct {
	ProductID int64 `json:"id_producto"`
	Quantity  int   `json:"cantidad"`
}
