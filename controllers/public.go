package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"gateworks-backend/config"
	"gateworks-backend/models"
)

const (
	ContextLocale = "locale"
	DefaultLocale = "es"
)

var (
	supportedLocales = []language.Tag{language.Spanish, language.English}
	localeMatcher    = language.NewMatcher(supportedLocales)
)

// NegotiateLocale returns "es" or "en". An explicit supported value wins,
// otherwise Accept-Language decides and Spanish is the fallback.
func NegotiateLocale(requested, acceptLanguage string) string {
	switch requested {
	case "es", "en":
		return requested
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	tag, _, confidence := localeMatcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	base, _ := tag.Base()
	return base.String()
}

// LocaleMiddleware resolves the :locale path segment.
func LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := NegotiateLocale(c.Param("locale"), c.GetHeader("Accept-Language"))
		c.Set(ContextLocale, locale)
		c.Header("Content-Language", locale)
		c.Next()
	}
}

func localeOf(c *gin.Context) string {
	if v, ok := c.Get(ContextLocale); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return DefaultLocale
}

// localize resolves the text for locale and drops the alternate fields.
func localize(l *models.Localized, locale string) {
	l.Name, l.Description = l.In(locale)
	l.NameEN, l.DescriptionEN = "", ""
}

func localizeProducts(products []models.Product, locale string) []models.Product {
	for i := range products {
		localize(&products[i].Localized, locale)
		if products[i].Category != nil {
			localize(&products[i].Category.Localized, locale)
		}
	}
	return emptyIfNil(products)
}

func ListPublicProducts(c *gin.Context) {
	locale := localeOf(c)
	query := config.DB.Preload("Category").Scopes(listScope(c, "products"))
	if slug := c.Query("category"); slug != "" {
		query = query.Joins("JOIN products_category pc ON pc.id = products.category").Where("pc.slug = ?", slug)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		respondDBError(c, err, "Failed to retrieve products")
		return
	}
	c.JSON(http.StatusOK, localizeProducts(products, locale))
}

func GetPublicProduct(c *gin.Context) {
	var product models.Product
	if err := config.DB.Preload("Category").First(&product, "slug = ?", c.Param("slug")).Error; err != nil {
		respondLookupError(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, localizeProducts([]models.Product{product}, localeOf(c))[0])
}

func ListPublicCategories(c *gin.Context) {
	locale := localeOf(c)
	var categories []models.ProductCategory
	if err := config.DB.Order("name ASC").Find(&categories).Error; err != nil {
		respondDBError(c, err, "Failed to retrieve categories")
		return
	}
	for i := range categories {
		localize(&categories[i].Localized, locale)
	}
	c.JSON(http.StatusOK, emptyIfNil(categories))
}

// ListCategoryProducts returns the category together with its products.
func ListCategoryProducts(c *gin.Context) {
	locale := localeOf(c)
	var category models.ProductCategory
	if err := config.DB.First(&category, "slug = ?", c.Param("slug")).Error; err != nil {
		respondLookupError(c, err, "Category not found")
		return
	}

	var products []models.Product
	if err := config.DB.Where("category = ?", category.ID).Order("created_at DESC").Find(&products).Error; err != nil {
		respondDBError(c, err, "Failed to retrieve products")
		return
	}

	localize(&category.Localized, locale)
	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"products": localizeProducts(products, locale),
	})
}

func ListPublicServices(c *gin.Context) {
	locale := localeOf(c)
	var list []models.Service
	if err := config.DB.Scopes(listScope(c, "services")).Find(&list).Error; err != nil {
		respondDBError(c, err, "Failed to retrieve services")
		return
	}
	for i := range list {
		localize(&list[i].Localized, locale)
	}
	c.JSON(http.StatusOK, emptyIfNil(list))
}

func GetPublicService(c *gin.Context) {
	var service models.Service
	if err := config.DB.First(&service, "slug = ?", c.Param("slug")).Error; err != nil {
		respondLookupError(c, err, "Service not found")
		return
	}
	localize(&service.Localized, localeOf(c))
	c.JSON(http.StatusOK, service)
}

func ListPublicWorks(c *gin.Context) {
	locale := localeOf(c)
	var works []models.Work
	if err := config.DB.Scopes(listScope(c, "works")).Find(&works).Error; err != nil {
		respondDBError(c, err, "Failed to retrieve works")
		return
	}
	for i := range works {
		localize(&works[i].Localized, locale)
	}
	c.JSON(http.StatusOK, emptyIfNil(works))
}

func GetPublicWork(c *gin.Context) {
	var work models.Work
	if err := config.DB.First(&work, "slug = ?", c.Param("slug")).Error; err != nil {
		respondLookupError(c, err, "Work not found")
		return
	}
	localize(&work.Localized, localeOf(c))
	c.JSON(http.StatusOK, work)
}
