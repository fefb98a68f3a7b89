package server

import (
	"net/http"

	auditdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/audit/domain"
	orderdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/order/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) ListOrders(c *gin.Context) {
	var query orderdomain.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}

	orders, err := s.orderSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}

func (s *Server) GetOrder(c *gin.Context) {
	order, err := s.orderSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) GetOrderReceipt(c *gin.Context) {
	if s.receipts == nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	order, err := s.orderSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	html, err := s.receipts.RenderHTML(order)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (s *Server) ResubmitOrder(c *gin.Context) {
	order, err := s.checkoutSvc.Resubmit(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.log.Warn("order resubmission failed", zap.String("order_id", c.Param("id")), zap.Error(err))
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := order.ID.String()
		metadata := map[string]any{}
		if order.FulfillmentOrderID != nil {
			metadata["fulfillment_order_id"] = *order.FulfillmentOrderID
		}
		if err := s.auditSvc.AuditLog(c.Request.Context(), auditdomain.ActionOrderResubmit, "order", &targetID, metadata); err != nil {
			s.log.Warn("audit log not recorded", zap.String("order_id", targetID), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) ListCatalogProducts(c *gin.Context) {
	products, err := s.catalogSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products})
}

type auditLogQuery struct {
	Action     string `form:"action"`
	TargetType string `form:"target_type"`
	TargetID   string `form:"target_id"`
	Limit      int    `form:"limit"`
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	if s.auditSvc == nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	var query auditLogQuery
	if err := c.ShouldBindQuery(&query); err != nil || query.Limit < 0 || query.Limit > orderdomain.MaxListLimit {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}

	entries, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListFilter{
		Action:     query.Action,
		TargetType: query.TargetType,
		TargetID:   query.TargetID,
		Limit:      query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}
