package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/review-radar/internal/engine"
)

// CompareRequest is the body of POST /products/compare.
type CompareRequest struct {
	ProductIDs []string `json:"product_ids"`
}

// SearchProductsHandler returns every review whose product title contains
// the keyword query parameter, case-insensitively.
func (api *API) SearchProductsHandler(c *gin.Context) {
	keyword := c.Query("keyword")

	reviews, err := api.engine.SearchProducts(keyword)
	if err != nil {
		SendEngineError(c, "product search", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"keyword": keyword,
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// RankProductsHandler ranks the products matching keyword by average
// sentiment, then average rating.
// Query parameters: keyword, top_n (optional), mode ("title" or "fulltext").
func (api *API) RankProductsHandler(c *gin.Context) {
	keyword := c.Query("keyword")

	validation := &ValidationResult{Valid: true}
	topN, topNValidation := ParseLimit("top_n", c.Query("top_n"), 0, 0)
	validation.Errors = append(validation.Errors, topNValidation.Errors...)

	mode, err := engine.ParseRankMode(c.Query("mode"))
	if err != nil {
		validation.AddError("mode", err.Error())
	}
	if validation.HasErrors() {
		validation.Valid = false
		SendValidationError(c, validation)
		return
	}
	mode = api.engine.ResolveRankMode(mode)

	products, err := api.engine.RankTopProducts(c.Request.Context(), keyword, topN, mode)
	if err != nil {
		SendEngineError(c, "rank products", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"keyword":  keyword,
		"mode":     mode,
		"products": products,
		"total":    len(products),
	})
}

// CompareProductHandler summarizes every review of one product.
func (api *API) CompareProductHandler(c *gin.Context) {
	productID := c.Param("productId")
	if validation := ValidateProductID(productID); validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	comparison, err := api.engine.CompareProduct(productID)
	if err != nil {
		SendEngineError(c, "compare product", err)
		return
	}

	c.JSON(http.StatusOK, comparison)
}

// CompareProductsHandler summarizes several products side by side. An
// unknown product fails the whole request.
// Request Body: CompareRequest
func (api *API) CompareProductsHandler(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if validation := ValidateCompareRequest(&req); validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	comparisons, err := api.engine.CompareProducts(req.ProductIDs)
	if err != nil {
		SendEngineError(c, "compare products", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": comparisons,
		"total":    len(comparisons),
	})
}
