package routes

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	cartControllers "github.com/nxough-jxhn/daingGraderWeb-sub002/controllers/cart"
	checkoutControllers "github.com/nxough-jxhn/daingGraderWeb-sub002/controllers/checkout"
	notifyControllers "github.com/nxough-jxhn/daingGraderWeb-sub002/controllers/notify"
	orderControllers "github.com/nxough-jxhn/daingGraderWeb-sub002/controllers/order"
	"github.com/nxough-jxhn/daingGraderWeb-sub002/paymongo"
)

// SetupRoutes is the single entry-point that wires up the auth, cart,
// checkout and order route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, db)

	// Cart routes (JWT-protected)
	SetupCartRoutes(r, db)

	// Checkout routes
	SetupCheckoutRoutes(r, db, rdb)

	// Order routes
	SetupOrderRoutes(r, db)
}

// buildOrchestrator assembles the checkout pipeline from its pieces: the
// Redis session store, the seller-scoped cart reader, the order
// materializer, the receipt notifier and the PayMongo client.
func buildOrchestrator(db *gorm.DB, rdb *redis.Client) *checkoutControllers.Orchestrator {
	sender := &notifyControllers.SendGridSender{
		APIKey:   os.Getenv("SENDGRID_API_KEY"),
		From:     os.Getenv("SENDGRID_FROM_EMAIL"),
		FromName: "DaingGrader",
	}

	returnURL := os.Getenv("CHECKOUT_RETURN_URL")
	if returnURL == "" {
		returnURL = "http://localhost:8080/checkout/resume"
	}

	return checkoutControllers.NewOrchestrator(
		checkoutControllers.NewRedisStore(rdb),
		&cartControllers.Reader{DB: db},
		&orderControllers.Materializer{DB: db},
		notifyControllers.NewTracker(db, sender),
		paymongo.NewClient(),
		returnURL,
	)
}
