package checkoutControllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	cartControllers "github.com/nxough-jxhn/daingGraderWeb-sub002/controllers/cart"
	orderControllers "github.com/nxough-jxhn/daingGraderWeb-sub002/controllers/order"
)

// POST /checkout/start
func StartCheckoutHandler(o *Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyerID, role, ok := currentUser(c)
		if !ok {
			return
		}
		if role != "user" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only regular users can place orders"})
			return
		}

		var req StartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		result, err := o.Start(c.Request.Context(), buyerID, req)
		if err != nil {
			respondCheckoutError(c, err)
			return
		}

		if result.RedirectURL != "" {
			c.JSON(http.StatusOK, gin.H{
				"status":       "redirect",
				"session_id":   result.SessionID,
				"redirect_url": result.RedirectURL,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":       "success",
			"order":        result.Order,
			"notification": result.Notification,
		})
	}
}

// GET /checkout/resume?session_id=…
// The gateway redirects the buyer here; this may be the first request a
// fresh process serves for this checkout.
func ResumeCheckoutHandler(o *Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Query("session_id")
		if sessionID == "" {
			sessionID = c.Param("session_id")
		}
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
			return
		}

		result, err := o.Resume(c.Request.Context(), sessionID)
		if err != nil {
			respondCheckoutError(c, err)
			return
		}

		if result.RedirectURL != "" {
			c.JSON(http.StatusOK, gin.H{
				"status":       "redirect",
				"session_id":   result.SessionID,
				"redirect_url": result.RedirectURL,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":       "success",
			"order":        result.Order,
			"notification": result.Notification,
		})
	}
}

// POST /checkout/:session_id/cancel
func CancelCheckoutHandler(o *Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyerID, _, ok := currentUser(c)
		if !ok {
			return
		}

		if err := o.Cancel(c.Request.Context(), buyerID, c.Param("session_id")); err != nil {
			respondCheckoutError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Checkout cancelled"})
	}
}

func currentUser(c *gin.Context) (id, role string, ok bool) {
	idVal, exists := c.Get("user_id")
	id, _ = idVal.(string)
	if !exists || id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", "", false
	}
	roleVal, _ := c.Get("role")
	role, _ = roleVal.(string)
	return id, role, true
}

func respondCheckoutError(c *gin.Context, err error) {
	var fieldErrs FieldErrors
	var declined *DeclinedError

	switch {
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fieldErrs})
	case errors.Is(err, cartControllers.ErrEmptySellerCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidPhone):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": FieldErrors{"address.phone": err.Error()}})
	case errors.Is(err, ErrCheckoutInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &declined):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": declined.Reason, "retriable": true})
	case errors.Is(err, ErrSessionNotFound):
		// Stale or duplicate resumption: abort to a safe state, no order.
		c.JSON(http.StatusGone, gin.H{"error": "checkout session expired or already completed"})
	case errors.Is(err, orderControllers.ErrAmountMismatch):
		log.Printf("checkout: amount mismatch: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order could not be created, please contact support"})
	default:
		log.Printf("checkout: payment error: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment service unavailable, please try again"})
	}
}
