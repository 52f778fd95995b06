package models

import "time"

// Collection regroupe des produits sous un nom, pour les vitrines du catalogue.
type Collection struct {
	ID          int64     `json:"id_catalogo" db:"collection_id"`
	Name        string    `json:"nombre" db:"name"`
	Description string    `json:"descripcion" db:"description"`
	ProductIDs  []int64   `json:"productos" db:"product_ids"`
	UpdatedAt   time.Time `json:"fecha_act" db:"updated_at"`
}

type CollectionProduct struct {
	ID   int64  `json:"id_producto"`
	Name string `json:"nombre"`
}

// CollectionView est la collection avec les noms de produits résolus.
type CollectionView struct {
	ID          int64               `json:"id_catalogo"`
	Name        string              `json:"nombre"`
	Description string              `json:"descripcion"`
	Products    []CollectionProduct `json:"productos"`
	UpdatedAt   time.Time           `json:"fecha_act"`
}
