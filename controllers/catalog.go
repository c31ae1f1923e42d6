package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"gateworks-backend/config"
	"gateworks-backend/models"
	"gateworks-backend/services"
	"gateworks-backend/utils"
)

// LocalizedInput is shared by every catalog form. Nil fields are left as they are.
type LocalizedInput struct {
	Name          *string `json:"name"`
	NameEN        *string `json:"name_en"`
	Description   *string `json:"description"`
	DescriptionEN *string `json:"description_en"`
}

func (in LocalizedInput) apply(l *models.Localized) {
	if in.Name != nil {
		l.Name = strings.TrimSpace(*in.Name)
	}
	if in.NameEN != nil {
		l.NameEN = strings.TrimSpace(*in.NameEN)
	}
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.DescriptionEN != nil {
		l.DescriptionEN = *in.DescriptionEN
	}
}

type CategoryInput struct {
	LocalizedInput
	Slug  *string `json:"slug"`
	Image *string `json:"image"`
}

type ProductInput struct {
	LocalizedInput
	Slug           *string                 `json:"slug"`
	CategoryID     *uuid.UUID              `json:"category_id"`
	Images         *[]string               `json:"images"`
	Features       *[]string               `json:"features"`
	Specifications *[]models.Specification `json:"specifications"`
}

type ServiceInput struct {
	LocalizedInput
	Slug     *string   `json:"slug"`
	Image    *string   `json:"image"`
	Features *[]string `json:"features"`
}

type WorkInput struct {
	LocalizedInput
	Slug     *string   `json:"slug"`
	Client   *string   `json:"client"`
	Location *string   `json:"location"`
	Year     *int      `json:"year"`
	Images   *[]string `json:"images"`
	Tags     *[]string `json:"tags"`
	Results  *[]string `json:"results"`
}

// CatalogController serves admin CRUD for categories, products, services and
// works. Deleting a record also removes its images from storage.
type CatalogController struct {
	Images *services.ImagePipeline
}

func jsonSlice[T any](v *[]T) datatypes.JSONSlice[T] {
	if v == nil {
		return datatypes.JSONSlice[T]{}
	}
	return datatypes.JSONSlice[T](emptyIfNil(*v))
}

// slugTaken reports whether another row of model already uses slug.
func slugTaken(model interface{}, slug string, except uuid.UUID) (bool, error) {
	var count int64
	err := config.DB.Model(model).Where("slug = ? AND id <> ?", slug, except).Count(&count).Error
	return count > 0, err
}

// prepareSlug fills in the slug on create or rename and rejects duplicates.
func prepareSlug(c *gin.Context, model interface{}, requested *string, name string, current *string, id uuid.UUID) bool {
	if requested == nil && *current != "" {
		return true
	}
	raw := ""
	if requested != nil {
		raw = *requested
	}
	slug := resolveSlug(raw, name)
	if slug == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "A name or slug is required")
		return false
	}
	taken, err := slugTaken(model, slug, id)
	if err != nil {
		respondDBError(c, err, "Database error")
		return false
	}
	if taken {
		utils.RespondWithError(c, http.StatusConflict, "Slug already in use")
		return false
	}
	*current = slug
	return true
}

func (cc *CatalogController) removeImages(ctx context.Context, urls ...string) {
	var nonEmpty []string
	for _, u := range urls {
		if u != "" {
			nonEmpty = append(nonEmpty, u)
		}
	}
	if cc.Images == nil || len(nonEmpty) == 0 {
		return
	}
	if failed := cc.Images.DeleteMany(ctx, nonEmpty); len(failed) > 0 {
		zap.S().Warnw("catalog images left in storage", "urls", failed)
	}
}

func requireName(c *gin.Context, l models.Localized) bool {
	if l.Name == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Name is required")
		return false
	}
	return true
}

// Categories

func (cc *CatalogController) CreateCategory(c *gin.Context) {
	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var category models.ProductCategory
	input.apply(&category.Localized)
	if !requireName(c, category.Localized) {
		return
	}
	if !prepareSlug(c, &models.ProductCategory{}, input.Slug, category.Name, &category.Slug, uuid.Nil) {
		return
	}
	if input.Image != nil {
		category.Image = *input.Image
	}

	if err := config.DB.Create(&category).Error; err != nil {
		respondDBError(c, err, "Failed to create category")
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (cc *CatalogController) GetCategories(c *gin.Context) {
	var categories []models.ProductCategory
	if err := config.DB.Scopes(listScope(c, "products_category")).Find(&categories).Error; err != nil {
		respondDBError(c, err, "Failed to retrieve categories")
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(categories))
}

func (cc *CatalogController) GetCategory(c *gin.Context) {
	id, ok := parseID(c, "id", "category")
	if !ok {
		return
	}
	var category models.ProductCategory
	if err := config.DB.First(&category, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Category not found")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (cc *CatalogController) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id", "category")
	if !ok {
		return
	}
	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var category models.ProductCategory
	if err := config.DB.First(&category, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Category not found")
		return
	}
	input.apply(&category.Localized)
	if !requireName(c, category.Localized) {
		return
	}
	if !prepareSlug(c, &models.ProductCategory{}, input.Slug, category.Name, &category.Slug, category.ID) {
		return
	}
	if input.Image != nil {
		category.Image = *input.Image
	}

	if err := config.DB.Save(&category).Error; err != nil {
		respondDBError(c, err, "Failed to update category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory detaches the category's products before deleting it.
func (cc *CatalogController) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id", "category")
	if !ok {
		return
	}
	var category models.ProductCategory
	if err := config.DB.First(&category, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Category not found")
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("category = ?", id).Update("category", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ProductCategory{}, "id = ?", id).Error
	})
	if err != nil {
		respondDBError(c, err, "Failed to delete category")
		return
	}

	cc.removeImages(c.Request.Context(), category.Image)
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// Products

func categoryExists(id *uuid.UUID) (bool, error) {
	if id == nil {
		return true, nil
	}
	var count int64
	err := config.DB.Model(&models.ProductCategory{}).Where("id = ?", *id).Count(&count).Error
	return count > 0, err
}

func (cc *CatalogController) applyProduct(c *gin.Context, input ProductInput, product *models.Product) bool {
	input.apply(&product.Localized)
	if !requireName(c, product.Localized) {
		return false
	}
	if !prepareSlug(c, &models.Product{}, input.Slug, product.Name, &product.Slug, product.ID) {
		return false
	}
	if input.CategoryID != nil {
		ok, err := categoryExists(input.CategoryID)
		if err != nil {
			respondDBError(c, err, "Database error")
			return false
		}
		if !ok {
			utils.RespondWithError(c, http.StatusBadRequest, "Category not found")
			return false
		}
		product.CategoryID = input.CategoryID
	}
	if input.Images != nil || product.Images == nil {
		product.Images = jsonSlice(input.Images)
	}
	if input.Features != nil || product.Features == nil {
		product.Features = jsonSlice(input.Features)
	}
	if input.Specifications != nil || product.Specifications == nil {
		product.Specifications = jsonSlice(input.Specifications)
	}
	return true
}

func (cc *CatalogController) CreateProduct(c *gin.Context) {
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var product models.Product
	if !cc.applyProduct(c, input, &product) {
		return
	}
	if err := config.DB.Create(&product).Error; err != nil {
		respondDBError(c, err, "Failed to create product")
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetProducts also filters by ?category_id=.
func (cc *CatalogController) GetProducts(c *gin.Context) {
	query := config.DB.Preload("Category").Scopes(listScope(c, "products"))
	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid category ID format")
			return
		}
		query = query.Where("category = ?", categoryID)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		respondDBError(c, err, "Failed to retrieve products")
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(products))
}

func (cc *CatalogController) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}
	var product models.Product
	if err := config.DB.Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (cc *CatalogController) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var product models.Product
	if err := config.DB.First(&product, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Product not found")
		return
	}
	if !cc.applyProduct(c, input, &product) {
		return
	}
	if err := config.DB.Omit("Category").Save(&product).Error; err != nil {
		respondDBError(c, err, "Failed to update product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (cc *CatalogController) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}
	var product models.Product
	if err := config.DB.First(&product, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Product not found")
		return
	}
	if err := config.DB.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Failed to delete product")
		return
	}

	cc.removeImages(c.Request.Context(), product.Images...)
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// Services

func (cc *CatalogController) applyService(c *gin.Context, input ServiceInput, service *models.Service) bool {
	input.apply(&service.Localized)
	if !requireName(c, service.Localized) {
		return false
	}
	if !prepareSlug(c, &models.Service{}, input.Slug, service.Name, &service.Slug, service.ID) {
		return false
	}
	if input.Image != nil {
		service.Image = *input.Image
	}
	if input.Features != nil || service.Features == nil {
		service.Features = jsonSlice(input.Features)
	}
	return true
}

func (cc *CatalogController) CreateService(c *gin.Context) {
	var input ServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	var service models.Service
	if !cc.applyService(c, input, &service) {
		return
	}
	if err := config.DB.Create(&service).Error; err != nil {
		respondDBError(c, err, "Failed to create service")
		return
	}
	c.JSON(http.StatusCreated, service)
}

func (cc *CatalogController) GetServices(c *gin.Context) {
	var list []models.Service
	if err := config.DB.Scopes(listScope(c, "services")).Find(&list).Error; err != nil {
		respondDBError(c, err, "Failed to retrieve services")
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(list))
}

func (cc *CatalogController) GetService(c *gin.Context) {
	id, ok := parseID(c, "id", "service")
	if !ok {
		return
	}
	var service models.Service
	if err := config.DB.First(&service, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Service not found")
		return
	}
	c.JSON(http.StatusOK, service)
}

func (cc *CatalogController) UpdateService(c *gin.Context) {
	id, ok := parseID(c, "id", "service")
	if !ok {
		return
	}
	var input ServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	var service models.Service
	if err := config.DB.First(&service, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Service not found")
		return
	}
	if !cc.applyService(c, input, &service) {
		return
	}
	if err := config.DB.Save(&service).Error; err != nil {
		respondDBError(c, err, "Failed to update service")
		return
	}
	c.JSON(http.StatusOK, service)
}

func (cc *CatalogController) DeleteService(c *gin.Context) {
	id, ok := parseID(c, "id", "service")
	if !ok {
		return
	}
	var service models.Service
	if err := config.DB.First(&service, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Service not found")
		return
	}
	if err := config.DB.Delete(&models.Service{}, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Failed to delete service")
		return
	}
	cc.removeImages(c.Request.Context(), service.Image)
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}

// Works

func (cc *CatalogController) applyWork(c *gin.Context, input WorkInput, work *models.Work) bool {
	input.apply(&work.Localized)
	if !requireName(c, work.Localized) {
		return false
	}
	if !prepareSlug(c, &models.Work{}, input.Slug, work.Name, &work.Slug, work.ID) {
		return false
	}
	if input.Client != nil {
		work.Client = *input.Client
	}
	if input.Location != nil {
		work.Location = *input.Location
	}
	if input.Year != nil {
		if *input.Year < 1900 || *input.Year > 2100 {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid year")
			return false
		}
		work.Year = *input.Year
	}
	if input.Images != nil || work.Images == nil {
		work.Images = jsonSlice(input.Images)
	}
	if input.Tags != nil || work.Tags == nil {
		work.Tags = jsonSlice(input.Tags)
	}
	if input.Results != nil || work.Results == nil {
		work.Results = jsonSlice(input.Results)
	}
	return true
}

func (cc *CatalogController) CreateWork(c *gin.Context) {
	var input WorkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	var work models.Work
	if !cc.applyWork(c, input, &work) {
		return
	}
	if err := config.DB.Create(&work).Error; err != nil {
		respondDBError(c, err, "Failed to create work")
		return
	}
	c.JSON(http.StatusCreated, work)
}

func (cc *CatalogController) GetWorks(c *gin.Context) {
	var works []models.Work
	if err := config.DB.Scopes(listScope(c, "works")).Find(&works).Error; err != nil {
		respondDBError(c, err, "Failed to retrieve works")
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(works))
}

func (cc *CatalogController) GetWork(c *gin.Context) {
	id, ok := parseID(c, "id", "work")
	if !ok {
		return
	}
	var work models.Work
	if err := config.DB.First(&work, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Work not found")
		return
	}
	c.JSON(http.StatusOK, work)
}

func (cc *CatalogController) UpdateWork(c *gin.Context) {
	id, ok := parseID(c, "id", "work")
	if !ok {
		return
	}
	var input WorkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	var work models.Work
	if err := config.DB.First(&work, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Work not found")
		return
	}
	if !cc.applyWork(c, input, &work) {
		return
	}
	if err := config.DB.Save(&work).Error; err != nil {
		respondDBError(c, err, "Failed to update work")
		return
	}
	c.JSON(http.StatusOK, work)
}

func (cc *CatalogController) DeleteWork(c *gin.Context) {
	id, ok := parseID(c, "id", "work")
	if !ok {
		return
	}
	var work models.Work
	if err := config.DB.First(&work, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Work not found")
		return
	}
	if err := config.DB.Delete(&models.Work{}, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Failed to delete work")
		return
	}
	cc.removeImages(c.Request.Context(), work.Images...)
	c.JSON(http.StatusOK, gin.H{"message": "Work deleted successfully"})
}
