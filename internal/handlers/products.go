package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"reviere_back_end/internal/catalog"
)

const photoURLTTL = 15 * time.Minute

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// uploadPhoto envoie le fichier "foto" s'il est présent ; "" sinon.
func (h *Handler) uploadPhoto(c *gin.Context) (string, bool) {
	if !isMultipart(c) {
		return "", true
	}
	file, err := c.FormFile("foto")
	if err != nil {
		return "", true
	}
	if h.Photos == nil {
		badRequest(c, "La carga de fotos no está disponible")
		return "", false
	}
	url, err := h.Photos.Upload(c.Request.Context(), file)
	if err != nil {
		log.WithError(err).WithField("filename", file.Filename).Error("❌ Upload photo échoué")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error al subir la foto"})
		return "", false
	}
	return url, true
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req catalog.CreateProductRequest
	if isMultipart(c) {
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, "Datos inválidos")
			return
		}
		if foto := c.PostForm("foto"); foto != "" {
			req.Photo = foto
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Datos inválidos")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	photo, ok := h.uploadPhoto(c)
	if !ok {
		return
	}
	if photo != "" {
		req.Photo = photo
	}

	p, err := h.Catalog.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Producto agregado exitosamente", "producto": p})
}

func (h *Handler) ListProducts(c *gin.Context) {
	companyID, ok := optionalInt64Query(c, "id_empresa")
	if !ok {
		return
	}
	products, err := h.Catalog.List(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) SearchProducts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	products, err := h.Catalog.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// ProductPhoto redirige vers une URL signée de la photo.
func (h *Handler) ProductPhoto(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if p.Photo == "" {
		c.JSON(http.StatusNotFound, gin.H{"message": "El producto no tiene foto"})
		return
	}
	url := p.Photo
	if h.Photos != nil {
		if url, err = h.Photos.SignedURL(c.Request.Context(), p.Photo, photoURLTTL); err != nil {
			log.WithError(err).WithField("product_id", id).Error("❌ URL signée non générée")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error en el servidor"})
			return
		}
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req catalog.UpdateProductRequest
	if isMultipart(c) {
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, "Datos inválidos")
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Datos inválidos")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	photo, ok := h.uploadPhoto(c)
	if !ok {
		return
	}
	if photo != "" {
		req.Photo = &photo
	}

	p, err := h.Catalog.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Catalog.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Producto eliminado exitosamente"})
}
