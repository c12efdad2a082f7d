package api

import (
	"context"
	"net/http"
	"sync"

	"furniture-shop/config"
	_ "furniture-shop/docs"
	"furniture-shop/routes"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	app     *routes.App
	initErr error
	once    sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)

		cfg := config.LoadConfig()
		log, err := config.NewLogger(cfg.AppEnv)
		if err != nil {
			initErr = err
			return
		}
		app, initErr = routes.NewApp(context.Background(), cfg, log)
		if initErr != nil {
			log.Error("serverless init failed", zap.Error(initErr))
		}
	})
}

// Handler is the serverless entry point.
func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		http.Error(w, `{"success":false,"message":"Service unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	app.Router.ServeHTTP(w, r)
}
