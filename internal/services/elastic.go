package services

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"reviere_back_end/internal/models"
)

// ProductIndex maintient l'index de recherche des produits.
type ProductIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewProductIndex(client *elasticsearch.Client, index string) *ProductIndex {
	return &ProductIndex{client: client, index: index}
}

type productDoc struct {
	Name        string  `json:"nombre"`
	Description string  `json:"descripcion"`
	Category    string  `json:"categoria"`
	CompanyID   int64   `json:"id_empresa"`
	Price       float64 `json:"precio"`
	OnOffer     bool    `json:"en_oferta"`
}

//
// --- INDEXATION DANS ELASTICSEARCH ---
//

func (ix *ProductIndex) IndexProduct(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(productDoc{
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		CompanyID:   p.CompanyID,
		Price:       p.Price,
		OnOffer:     p.OnOffer,
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      ix.index,
		DocumentID: strconv.FormatInt(p.ID, 10),
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return errors.Wrap(err, "elastic index")
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.Errorf("elastic index %d: %s", p.ID, res.Status())
	}
	log.WithField("product_id", p.ID).Debug("✅ Produit indexé dans Elasticsearch")
	return nil
}

func (ix *ProductIndex) DeleteProduct(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{
		Index:      ix.index,
		DocumentID: strconv.FormatInt(id, 10),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return errors.Wrap(err, "elastic delete")
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return errors.Errorf("elastic delete %d: %s", id, res.Status())
	}
	return nil
}

//
// --- RECHERCHE DANS ELASTICSEARCH ---
//

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchProducts retourne les ids triés par pertinence.
func (ix *ProductIndex) SearchProducts(ctx context.Context, query string, limit int) ([]int64, error) {
	var buf bytes.Buffer
	q := map[string]interface{}{
		"size":    limit,
		"_source": false,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"nombre^3", "descripcion", "categoria^2"},
				"fuzziness": "AUTO",
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, errors.Wrap(err, "encodage requête")
	}

	req := esapi.SearchRequest{
		Index: []string{ix.index},
		Body:  &buf,
	}
	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return nil, errors.Wrap(err, "elastic search")
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.Errorf("elastic search: %s", res.Status())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, errors.Wrap(err, "décodage JSON")
	}

	ids := make([]int64, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
