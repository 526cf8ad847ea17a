package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/canhigher/ing-hubs-case/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createOrderRequest struct {
	CustomerID uint            `json:"customer_id" binding:"required"`
	AssetName  string          `json:"asset_name" binding:"required"`
	Side       string          `json:"side" binding:"required,oneof=BUY SELL"`
	Size       decimal.Decimal `json:"size" binding:"required"`
	Price      decimal.Decimal `json:"price" binding:"required"`
}

func (s *Server) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_REQUEST", Message: err.Error()})
		return
	}

	if !canActOn(c, req.CustomerID) {
		c.JSON(http.StatusForbidden, errorResponse{Code: "FORBIDDEN", Message: "not authorized to create orders for this customer"})
		return
	}

	order, err := s.orders.CreateOrder(req.CustomerID, req.AssetName, domain.OrderSide(req.Side), req.Size, req.Price)
	if err != nil {
		s.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (s *Server) listOrders(c *gin.Context) {
	// The no-filter form returns every order and is reserved for admins.
	if c.Query("customerId") == "" && c.Query("startDate") == "" && c.Query("endDate") == "" && c.Query("status") == "" && isAdmin(c) {
		orders, err := s.orders.ListAllOrders()
		if err != nil {
			s.writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
		return
	}

	var filter domain.OrderFilter
	if raw := c.Query("customerId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_REQUEST", Message: "invalid customerId"})
			return
		}
		filter.CustomerID = uint(id)
	} else if !isAdmin(c) {
		// Customers are always scoped to their own orders. An admin without
		// customerId filters across all customers.
		id, ok := callerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, errorResponse{Code: "UNAUTHORIZED", Message: "missing user"})
			return
		}
		filter.CustomerID = id
	}
	if filter.CustomerID != 0 && !canActOn(c, filter.CustomerID) {
		c.JSON(http.StatusForbidden, errorResponse{Code: "FORBIDDEN", Message: "not authorized for this customer"})
		return
	}

	if raw := c.Query("startDate"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_REQUEST", Message: "invalid startDate"})
			return
		}
		filter.Start = t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_REQUEST", Message: "invalid endDate"})
			return
		}
		filter.End = t
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.OrderStatus(raw)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_REQUEST", Message: "invalid status"})
			return
		}
		filter.Status = status
	}

	orders, err := s.orders.ListOrders(filter)
	if err != nil {
		s.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) getOrder(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := s.orders.GetOrderByID(orderID)
	if err != nil {
		s.writeServiceError(c, err)
		return
	}
	if !canActOn(c, order.CustomerID) {
		c.JSON(http.StatusForbidden, errorResponse{Code: "FORBIDDEN", Message: "not authorized for this order"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) cancelOrder(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := s.orders.GetOrderByID(orderID)
	if err != nil {
		s.writeServiceError(c, err)
		return
	}
	if !canActOn(c, order.CustomerID) {
		c.JSON(http.StatusForbidden, errorResponse{Code: "FORBIDDEN", Message: "not authorized for this order"})
		return
	}

	canceled, err := s.orders.CancelOrder(orderID)
	if err != nil {
		s.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, canceled)
}

func (s *Server) matchOrder(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	matched, err := s.orders.MatchOrder(orderID)
	if err != nil {
		s.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, matched)
}

func orderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_REQUEST", Message: "invalid order id"})
		return 0, false
	}
	return uint(id), true
}
