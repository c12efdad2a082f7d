package routes

import (
	"furniture-shop/controllers"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Controllers struct {
	Product  *controllers.ProductController
	Cart     *controllers.CartController
	Discount *controllers.DiscountController
	Order    *controllers.OrderController
}

func SetupRoutes(router *gin.Engine, ctrls Controllers, session gin.HandlerFunc) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	router.GET("/categories/:id/products", ctrls.Product.ListCategory)
	router.GET("/products/:slug", ctrls.Product.GetProduct)
	router.POST("/products/:slug/quote", ctrls.Product.Quote)
	router.GET("/discounts/auto-apply", ctrls.Discount.GetAutoApply)

	shop := router.Group("/")
	shop.Use(session)
	{
		shop.GET("/cart", ctrls.Cart.GetCart)
		shop.DELETE("/cart", ctrls.Cart.ClearCart)
		shop.POST("/cart/items", ctrls.Cart.AddItem)
		shop.PATCH("/cart/items/:id", ctrls.Cart.UpdateItem)
		shop.DELETE("/cart/items/:id", ctrls.Cart.RemoveItem)

		shop.POST("/cart/discount", ctrls.Discount.ApplyDiscount)
		shop.DELETE("/cart/discount", ctrls.Discount.RemoveDiscount)

		shop.POST("/checkout", ctrls.Order.Checkout)
	}
}
