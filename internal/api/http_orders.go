package api

import (
	"net/http"

	"marketplace/internal/entity"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) Buy(c *gin.Context) {
	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		return
	}
	user := CurrentUser(c)

	ctx, cancel := h.storeContext(c)
	defer cancel()

	order, err := h.orders.CreateOrder(ctx, user.ID, productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.PurchaseResponse{
		Message: "purchase completed",
		Order:   makeOrderSummary(order),
	})
}

func (h *HTTPHandler) MyOrders(c *gin.Context) {
	user := CurrentUser(c)

	ctx, cancel := h.storeContext(c)
	defer cancel()

	orders, err := h.orders.ListForUser(ctx, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]entity.OrderSummary, 0, len(orders))
	for idx := range orders {
		response = append(response, makeOrderSummary(&orders[idx]))
	}
	c.JSON(http.StatusOK, response)
}

func makeOrderSummary(order *entity.DbOrder) entity.OrderSummary {
	if order == nil {
		return entity.OrderSummary{}
	}
	return entity.OrderSummary{
		ID:        order.ID,
		UserID:    order.UserID,
		ProductID: order.ProductID,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
	}
}
