package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"marketplace/internal/entity"
	"marketplace/internal/service"
	"marketplace/internal/utils"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) ListProducts(c *gin.Context) {
	var query entity.ProductQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	products, err := h.catalog.List(ctx, query)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]entity.ProductSummary, 0, len(products))
	for idx := range products {
		response = append(response, h.makeProductSummary(&products[idx]))
	}
	c.JSON(http.StatusOK, response)
}

func (h *HTTPHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	product, err := h.catalog.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.makeProductSummary(product))
}

func (h *HTTPHandler) CreateProduct(c *gin.Context) {
	var req entity.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}
	if req.Price == nil {
		MissingField(c, "price")
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	product, err := h.catalog.Create(ctx, CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.makeProductSummary(product))
}

func (h *HTTPHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req entity.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	product, err := h.catalog.Update(ctx, CurrentUser(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.makeProductSummary(product))
}

func (h *HTTPHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	if err := h.catalog.Delete(ctx, CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// UploadProductMedia accepts either a multipart "file" field or a JSON body
// {"data": "<data URL or base64>"}.
func (h *HTTPHandler) UploadProductMedia(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	maxBytes := h.catalog.MediaMaxBytes()
	// Leave room for multipart framing and base64 expansion.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes*2+(1<<20))

	data, ext, err := readMediaPayload(c, maxBytes)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.Is(err, service.ErrMediaTooLarge) || errors.As(err, &tooLarge) {
			respondError(c, service.ErrMediaTooLarge)
			return
		}
		BadRequest(c, ErrCodeInvalidRequest, err.Error())
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	product, err := h.catalog.AttachMedia(ctx, CurrentUser(c), id, data, ext)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.makeProductSummary(product))
}

func readMediaPayload(c *gin.Context, maxBytes int64) ([]byte, string, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return nil, "", err
		}
		if fileHeader.Size > maxBytes {
			return nil, "", service.ErrMediaTooLarge
		}
		file, err := fileHeader.Open()
		if err != nil {
			return nil, "", err
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
		if err != nil {
			return nil, "", err
		}
		if int64(len(data)) > maxBytes {
			return nil, "", service.ErrMediaTooLarge
		}
		ext, err := utils.ResolveImageExtension(fileHeader.Header.Get("Content-Type"), data)
		if err != nil {
			return nil, "", err
		}
		return data, ext, nil
	}

	var req entity.ProductMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, "", err
	}
	data, ext, err := utils.DecodeMediaPayload(req.Data)
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > maxBytes {
		return nil, "", service.ErrMediaTooLarge
	}
	return data, ext, nil
}

func (h *HTTPHandler) makeProductSummary(product *entity.DbProduct) entity.ProductSummary {
	if product == nil {
		return entity.ProductSummary{}
	}
	paths := product.MediaPaths.ToSlice()
	return entity.ProductSummary{
		ID:          product.ID,
		Name:        product.Name,
		Price:       product.Price.InexactFloat64(),
		Description: product.Description,
		OwnerID:     product.OwnerID,
		MediaPaths:  paths,
		MediaURLs:   h.publicURLs(paths),
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}
