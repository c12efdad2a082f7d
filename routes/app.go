package routes

import (
	"context"

	"furniture-shop/config"
	"furniture-shop/controllers"
	"furniture-shop/libs"
	"furniture-shop/middleware"
	"furniture-shop/repositories"
	"furniture-shop/services"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// App is the wired HTTP application together with the resources it owns.
type App struct {
	Router  *gin.Engine
	closers []func()
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// NewApp connects to postgres, redis and kafka and builds the router.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	app := &App{}

	if err := config.RunMigrations(cfg.DSN(), cfg.MigrationDir, log); err != nil {
		return nil, errors.Wrap(err, "migrate")
	}

	pool, err := config.ConnectDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, pool.Close)

	rdb, err := config.ConnectRedis(ctx, cfg, log)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, func() { _ = rdb.Close() })

	images, err := libs.NewCloudinaryImages(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, log)
	if err != nil {
		app.Close()
		return nil, err
	}

	var events repositories.OrderEventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher := libs.NewOrderEvents(cfg.KafkaBrokers, cfg.OrderTopic)
		app.closers = append(app.closers, func() { _ = publisher.Close() })
		events = publisher
	} else {
		log.Warn("KAFKA_BROKERS not set, order events disabled")
	}

	var notifier services.Notifier
	if mailer, err := libs.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom); err == nil {
		notifier = mailer
	} else {
		log.Warn("order confirmation email disabled", zap.Error(err))
	}

	productRepo := repositories.NewProductRepository(pool, log)
	products := repositories.NewCachedProducts(productRepo, rdb, cfg.ProductTTL, log)
	if err := products.Invalidate(ctx); err != nil {
		log.Warn("product cache not invalidated", zap.Error(err))
	}
	discountRepo := repositories.NewDiscountRepository(pool, log)
	carts := repositories.NewCartRepository(rdb, cfg.CartTTL, log)
	orders := repositories.NewOrderRepository(pool, discountRepo, events, cfg.PaymentSessionURL, log)
	idem := repositories.NewIdempotencyStore(rdb, cfg.IdempotencyTTL)

	pricing := services.NewPricingService(cfg.AssemblyFee)
	cartSvc := services.NewCartService(pricing, services.ShippingPolicy{
		FreeThreshold: cfg.FreeShippingThreshold,
		FlatFee:       cfg.ShippingFee,
	})
	discountSvc := services.NewDiscountService(discountRepo, pricing, cfg.EligibleCategory, cfg.Currency, log)
	storefront := services.NewStorefront(cartSvc, discountSvc, products, carts, log)
	checkout := services.NewCheckoutService(services.CheckoutDeps{
		Pricing:   pricing,
		Carts:     cartSvc,
		Discounts: discountSvc,
		Products:  products,
		Store:     carts,
		Orders:    orders,
		Notifier:  notifier,
		Images:    images,
		Currency:  cfg.Currency,
		Log:       log,
	})

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORSMiddleware(cfg.OriginURL))

	SetupRoutes(router, Controllers{
		Product:  controllers.NewProductController(services.NewProductService(products, pricing, images), log),
		Cart:     controllers.NewCartController(storefront, log),
		Discount: controllers.NewDiscountController(storefront, discountSvc, log),
		Order:    controllers.NewOrderController(checkout, idem, log),
	}, middleware.CartSession(cfg.SessionSecret, cfg.SessionTTL, log))

	app.Router = router
	return app, nil
}
