package models

import "time"

// Types de compte. Les rôles JWT reprennent les mêmes valeurs.
const (
	AccountUser     = "usuario"
	AccountCompany  = "empresa"
	AccountEmployee = "empleado"
)

type Account struct {
	Kind         string    `json:"tipo" db:"kind"`
	ID           int64     `json:"id" db:"account_id"`
	Name         string    `json:"nombre" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CompanyID    *int64    `json:"id_empresa,omitempty" db:"company_id"`
	Phone        string    `json:"telefono,omitempty" db:"phone"`
	Address      string    `json:"direccion,omitempty" db:"address"`
	Description  string    `json:"descripcion,omitempty" db:"description"`
	LogoURL      string    `json:"logo_url,omitempty" db:"logo_url"`
	Provider     string    `json:"proveedor,omitempty" db:"provider"`
	CreatedAt    time.Time `json:"fecha_reg" db:"created_at"`
}
