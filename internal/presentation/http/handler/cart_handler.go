package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mahavirtraders/flowtrack/internal/application/service"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/internal/presentation/http/dto/request"
	"github.com/mahavirtraders/flowtrack/internal/presentation/http/dto/response"
)

// CartHandler edits the signed-in cashier's cart
type CartHandler struct {
	cartService *service.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// session resolves the cart key or writes a 401
func (h *CartHandler) session(c *gin.Context) (string, bool) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return "", false
	}
	return SessionID(c, *userID), true
}

func (h *CartHandler) respond(c *gin.Context, cart *entity.Cart, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cart updated", response.NewCartView(cart))
}

// Get returns the current cart
// @Summary Get cart
// @Tags cart
// @Security BearerAuth
// @Param X-Terminal-ID header string false "Till identifier"
// @Success 200 {object} response.APIResponse
// @Router /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	cart, err := h.cartService.GetCart(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cart retrieved", response.NewCartView(cart))
}

// AddItem adds one unit of a product, creating the line if needed
// @Summary Add product to cart
// @Tags cart
// @Security BearerAuth
// @Param request body request.AddCartItemRequest true "Product"
// @Success 200 {object} response.APIResponse
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req request.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	cart, err := h.cartService.AddProduct(c.Request.Context(), session, req.ProductID)
	h.respond(c, cart, err)
}

// SetQuantity sets a line's quantity, never below 1
// @Summary Set line quantity
// @Tags cart
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Param request body request.SetQuantityRequest true "Quantity"
// @Success 200 {object} response.APIResponse
// @Router /cart/items/{productId} [put]
func (h *CartHandler) SetQuantity(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	productID, err := parseID(c, "productId", "product")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req request.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	cart, err := h.cartService.SetQuantity(c.Request.Context(), session, productID, req.Quantity)
	h.respond(c, cart, err)
}

// AdjustQuantity moves a line's quantity up or down, stopping at 1
// @Summary Increment or decrement a line
// @Tags cart
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Param request body request.AdjustQuantityRequest true "Delta"
// @Success 200 {object} response.APIResponse
// @Router /cart/items/{productId} [patch]
func (h *CartHandler) AdjustQuantity(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	productID, err := parseID(c, "productId", "product")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req request.AdjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	cart, err := h.cartService.AdjustQuantity(c.Request.Context(), session, productID, req.Delta)
	h.respond(c, cart, err)
}

// RemoveItem drops a line
// @Summary Remove line
// @Tags cart
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Success 200 {object} response.APIResponse
// @Router /cart/items/{productId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	productID, err := parseID(c, "productId", "product")
	if err != nil {
		response.Error(c, err)
		return
	}
	cart, err := h.cartService.RemoveLine(c.Request.Context(), session, productID)
	h.respond(c, cart, err)
}

// SetCharges sets discount, labour and freight
// @Summary Set cart charges
// @Tags cart
// @Security BearerAuth
// @Param request body request.SetChargesRequest true "Charges"
// @Success 200 {object} response.APIResponse
// @Router /cart/charges [put]
func (h *CartHandler) SetCharges(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req request.SetChargesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	charges := entity.NewCharges(req.Discount.Minor(), req.Labour.Minor(), req.Freight.Minor())
	cart, err := h.cartService.SetCharges(c.Request.Context(), session, charges)
	h.respond(c, cart, err)
}

// Clear empties the cart and resets its charges
// @Summary Clear cart
// @Tags cart
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Router /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.cartService.Clear(c.Request.Context(), session); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cart cleared", response.NewCartView(entity.NewCart(session)))
}
