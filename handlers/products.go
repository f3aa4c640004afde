package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Madhav-Gupta-28/storefront-backend-go/database"
	"github.com/Madhav-Gupta-28/storefront-backend-go/media"
	"github.com/Madhav-Gupta-28/storefront-backend-go/models"
	"github.com/Madhav-Gupta-28/storefront-backend-go/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecommendedCount is the size of the random recommendation sample.
const RecommendedCount = 15

var imageFields = []string{"image1", "image2", "image3", "image4"}

// productForm is the multipart body of the create and update endpoints.
type productForm struct {
	Name        string
	Description string
	Price       float64
	Category    string
	SubCategory string
	Sizes       []models.ProductSize
	Bestseller  bool
	Images      []*multipart.FileHeader
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

type SingleProductRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// parseProductForm reads and checks the catalog fields of a multipart form.
func parseProductForm(c echo.Context) (*productForm, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.New("expected a multipart form")
	}
	value := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	pf := &productForm{
		Name:        value("name"),
		Description: value("description"),
		Category:    value("category"),
		SubCategory: value("subCategory"),
		Bestseller:  value("bestseller") == "true",
	}
	if pf.Name == "" || pf.Description == "" || pf.Category == "" || pf.SubCategory == "" {
		return nil, errors.New("name, description, category and subCategory are required")
	}

	pf.Price, err = utils.ParsePrice(value("price"))
	if err != nil {
		return nil, err
	}

	if raw := value("sizes"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &pf.Sizes); err != nil {
			return nil, errors.New("sizes must be a JSON array")
		}
	}
	for _, s := range pf.Sizes {
		if !s.Valid() {
			return nil, fmt.Errorf("invalid size %q", s)
		}
	}
	if pf.Sizes == nil {
		pf.Sizes = []models.ProductSize{}
	}

	for _, key := range imageFields {
		if files := form.File[key]; len(files) > 0 {
			pf.Images = append(pf.Images, files[0])
		}
	}
	return pf, nil
}

// uploadImages stores every file and returns their URLs in form order. On
// failure the files already uploaded are removed again.
func (h *Handler) uploadImages(ctx context.Context, files []*multipart.FileHeader) ([]string, int, error) {
	if len(files) == 0 {
		return []string{}, 0, nil
	}
	if h.Images == nil {
		return nil, http.StatusServiceUnavailable, errors.New("Image storage is not configured")
	}

	type upload struct {
		name        string
		contentType string
		data        []byte
	}
	uploads := make([]upload, 0, len(files))
	for _, fh := range files {
		data, contentType, err := media.ReadImage(fh)
		if err != nil {
			switch {
			case errors.Is(err, media.ErrImageTooLarge):
				return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("%s: %v", fh.Filename, err)
			case errors.Is(err, media.ErrUnsupportedFileType):
				return nil, http.StatusBadRequest, fmt.Errorf("%s: only jpeg, png and webp images are accepted", fh.Filename)
			}
			return nil, http.StatusBadRequest, fmt.Errorf("%s: could not read file", fh.Filename)
		}
		uploads = append(uploads, upload{name: fh.Filename, contentType: contentType, data: data})
	}

	urls := make([]string, 0, len(uploads))
	for _, u := range uploads {
		url, err := h.Images.Upload(ctx, u.name, u.contentType, u.data)
		if err != nil {
			log.Printf("image upload %s: %v", u.name, err)
			h.deleteImages(ctx, urls)
			return nil, http.StatusBadGateway, errors.New("Failed to upload images")
		}
		urls = append(urls, url)
	}
	return urls, 0, nil
}

// deleteImages removes stored images, logging failures only.
func (h *Handler) deleteImages(ctx context.Context, urls []string) {
	if h.Images == nil {
		return
	}
	for _, url := range urls {
		if err := h.Images.Delete(ctx, url); err != nil {
			log.Printf("image delete %s: %v", url, err)
		}
	}
}

func (h *Handler) CreateProduct(c echo.Context) error {
	pf, err := parseProductForm(c)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	urls, status, err := h.uploadImages(ctx, pf.Images)
	if err != nil {
		return jsonError(c, status, err.Error())
	}

	now := time.Now()
	product := &models.Product{
		Name:        pf.Name,
		Description: pf.Description,
		Price:       pf.Price,
		Images:      urls,
		Category:    pf.Category,
		SubCategory: pf.SubCategory,
		Sizes:       pf.Sizes,
		Bestseller:  pf.Bestseller,
		Reviews:     []models.Review{},
		Date:        now.UnixMilli(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Products.Create(ctx, product); err != nil {
		log.Printf("create product: %v", err)
		h.deleteImages(ctx, urls)
		return jsonError(c, http.StatusInternalServerError, "Failed to create product")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Product created successfully.",
		"product": product,
	})
}

// UpdateProduct replaces the catalog fields. When new images are sent they
// replace the stored set and the old objects are removed.
func (h *Handler) UpdateProduct(c echo.Context) error {
	id, err := paramObjectID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid product ID")
	}
	pf, err := parseProductForm(c)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	product, err := h.Products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "Product not found")
		}
		return jsonError(c, http.StatusInternalServerError, "Failed to fetch product")
	}

	oldImages := product.Images
	var newImages []string
	if len(pf.Images) > 0 {
		var status int
		newImages, status, err = h.uploadImages(ctx, pf.Images)
		if err != nil {
			return jsonError(c, status, err.Error())
		}
		product.Images = newImages
	}

	product.Name = pf.Name
	product.Description = pf.Description
	product.Price = pf.Price
	product.Category = pf.Category
	product.SubCategory = pf.SubCategory
	product.Sizes = pf.Sizes
	product.Bestseller = pf.Bestseller

	if err := h.Products.Update(ctx, product); err != nil {
		h.deleteImages(ctx, newImages)
		if errors.Is(err, database.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "Product not found")
		}
		log.Printf("update product %s: %v", id.Hex(), err)
		return jsonError(c, http.StatusInternalServerError, "Failed to update product")
	}
	if len(newImages) > 0 {
		h.deleteImages(ctx, oldImages)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Product updated successfully.",
		"product": product,
	})
}

func (h *Handler) DeleteProduct(c echo.Context) error {
	id, err := paramObjectID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid product ID")
	}

	ctx := c.Request().Context()
	product, err := h.Products.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "Product not found")
		}
		return jsonError(c, http.StatusInternalServerError, "Failed to delete product")
	}
	h.deleteImages(ctx, product.Images)

	return c.JSON(http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

// GetProducts lists the catalog, narrowed by the query filters.
func (h *Handler) GetProducts(c echo.Context) error {
	filter := models.ProductFilter{
		Category:    c.QueryParam("category"),
		SubCategory: c.QueryParam("subCategory"),
		Search:      strings.TrimSpace(c.QueryParam("search")),
		Sort:        models.ProductSort(c.QueryParam("sort")),
	}
	if raw := c.QueryParam("bestseller"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return jsonError(c, http.StatusBadRequest, "bestseller must be true or false")
		}
		filter.Bestseller = &b
	}
	switch filter.Sort {
	case "", models.SortNewest, models.SortPriceAsc, models.SortPriceDesc:
	default:
		return jsonError(c, http.StatusBadRequest, "sort must be one of newest, price_asc, price_desc")
	}

	return h.listProducts(c, filter)
}

func (h *Handler) GetBestsellers(c echo.Context) error {
	bestseller := true
	return h.listProducts(c, models.ProductFilter{Bestseller: &bestseller})
}

func (h *Handler) GetProductsByCategory(c echo.Context) error {
	return h.listProducts(c, models.ProductFilter{Category: c.Param("category")})
}

func (h *Handler) listProducts(c echo.Context, filter models.ProductFilter) error {
	products, err := h.Products.Find(c.Request().Context(), filter)
	if err != nil {
		log.Printf("list products: %v", err)
		return jsonError(c, http.StatusInternalServerError, "Failed to fetch products")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"products": products})
}

func (h *Handler) GetRecommended(c echo.Context) error {
	products, err := h.Products.Sample(c.Request().Context(), RecommendedCount)
	if err != nil {
		log.Printf("sample products: %v", err)
		return jsonError(c, http.StatusInternalServerError, "Failed to fetch products")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"recommendedProducts": products})
}

func (h *Handler) GetProduct(c echo.Context) error {
	id, err := paramObjectID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid product ID")
	}
	return h.writeProduct(c, id)
}

// GetSingleProduct is the body-addressed variant of GetProduct.
func (h *Handler) GetSingleProduct(c echo.Context) error {
	var req SingleProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	id, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid product ID")
	}
	return h.writeProduct(c, id)
}

func (h *Handler) writeProduct(c echo.Context, id primitive.ObjectID) error {
	product, err := h.Products.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "Product not found")
		}
		return jsonError(c, http.StatusInternalServerError, "Failed to fetch product")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"product": product})
}

func (h *Handler) AddReview(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}
	productID, err := paramObjectID(c, "id")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid product ID")
	}

	var req ReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		return jsonError(c, http.StatusNotFound, "User not found")
	}

	review := models.Review{
		UserID:    userID,
		Name:      user.Name,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		CreatedAt: time.Now(),
	}
	product, err := h.Products.AddReview(ctx, productID, review)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			return jsonError(c, http.StatusNotFound, "Product not found")
		case errors.Is(err, database.ErrAlreadyReviewed):
			return jsonError(c, http.StatusBadRequest, "You already reviewed this product")
		}
		log.Printf("add review on %s: %v", productID.Hex(), err)
		return jsonError(c, http.StatusInternalServerError, "Failed to add review")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Review added",
		"product": map[string]interface{}{
			"reviews":       product.Reviews,
			"averageRating": product.AverageRating,
		},
	})
}
