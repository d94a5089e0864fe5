package bootstrap

import (
	"github.com/folioawards/folio-backend/config"
	"github.com/gin-gonic/gin"
)

// SetGinMode picks release mode in production and test mode for the test
// environment; anything else keeps gin's debug default.
func SetGinMode(cfg *config.Config) {
	switch {
	case cfg.IsProduction():
		gin.SetMode(gin.ReleaseMode)
	case cfg.App.Environment == "test":
		gin.SetMode(gin.TestMode)
	}
}
