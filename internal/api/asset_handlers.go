package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type addBalanceRequest struct {
	CustomerID uint            `json:"customer_id" binding:"required"`
	AssetName  string          `json:"asset_name" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
}

func (s *Server) listAssets(c *gin.Context) {
	customerID, ok := customerIDQuery(c)
	if !ok {
		return
	}

	if !canActOn(c, customerID) {
		c.JSON(http.StatusForbidden, errorResponse{Code: "FORBIDDEN", Message: "not authorized for this customer"})
		return
	}

	assets, err := s.assets.GetAssetsByCustomer(customerID)
	if err != nil {
		s.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, assets)
}

func (s *Server) addBalance(c *gin.Context) {
	var req addBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_REQUEST", Message: err.Error()})
		return
	}

	asset, err := s.assets.AddBalance(req.CustomerID, req.AssetName, req.Amount)
	if err != nil {
		s.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

// customerIDQuery resolves the customerId query parameter, defaulting to the
// caller's own id. Writes the error response itself on failure.
func customerIDQuery(c *gin.Context) (uint, bool) {
	raw := c.Query("customerId")
	if raw == "" {
		id, ok := callerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errorResponse{Code: "UNAUTHORIZED", Message: "missing user"})
			return 0, false
		}
		return id, true
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_REQUEST", Message: "invalid customerId"})
		return 0, false
	}
	return uint(id), true
}
