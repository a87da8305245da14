package main

import (
	"github.com/gin-gonic/gin"
	"tipsats.backend/internal/interfaces/http/handlers"
	"tipsats.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler        *handlers.AuthHandler
	walletHandler      *handlers.WalletHandler
	tipHandler         *handlers.TipHandler
	creatorHandler     *handlers.CreatorHandler
	authMiddleware     gin.HandlerFunc
	optionalAuth       gin.HandlerFunc
	requireIdempotency bool
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/send-otp", d.authHandler.SendOTP)
			auth.POST("/verify-otp", d.authHandler.VerifyOTP)
			auth.POST("/refresh", d.authHandler.RefreshToken)
			auth.POST("/logout", d.authHandler.Logout)
			auth.GET("/me", d.authMiddleware, d.authHandler.GetMe)
		}

		// Wallet routes (public)
		wallet := v1.Group("/wallet")
		{
			wallet.POST("/create", d.walletHandler.CreateWallet)
			wallet.GET("/:address/balance", d.walletHandler.GetBalance)
		}

		// Tip routes (anonymous or signed-in tippers)
		tip := v1.Group("/tip")
		tip.Use(d.optionalAuth)
		{
			tip.POST("/send", middleware.IdempotencyMiddleware(d.requireIdempotency), d.tipHandler.SendTip)
		}

		v1.GET("/tx/:txId/status", d.tipHandler.GetTxStatus)

		// Creator routes (public read, protected write)
		creator := v1.Group("/creator")
		{
			creator.POST("/register", d.authMiddleware, d.creatorHandler.Register)
			creator.GET("/:username", d.creatorHandler.GetProfile)
		}

		v1.GET("/dashboard", d.authMiddleware, d.creatorHandler.GetDashboard)
	}
}
