// internal/app/router.go
package app

import (
	"net/http"

	adminHandler "leadscout-service/internal/handlers/admin"
	authHandler "leadscout-service/internal/handlers/auth"
	candidateHandler "leadscout-service/internal/handlers/candidate"
	leadHandler "leadscout-service/internal/handlers/lead"
	messageHandler "leadscout-service/internal/handlers/message"
	paymentHandler "leadscout-service/internal/handlers/payment"
	planHandler "leadscout-service/internal/handlers/plan"
	scrapeHandler "leadscout-service/internal/handlers/scrape"
	subscriptionHandler "leadscout-service/internal/handlers/subscription"
	wsHandler "leadscout-service/internal/handlers/websocket"
	"leadscout-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers bundles everything SetupRouter needs.
type Handlers struct {
	Auth         *authHandler.AuthHandler
	Plan         *planHandler.PlanHandler
	Subscription *subscriptionHandler.SubscriptionHandler
	Payment      *paymentHandler.PaymentHandler
	Scrape       *scrapeHandler.ScrapeHandler
	Candidate    *candidateHandler.CandidateHandler
	Lead         *leadHandler.LeadHandler
	Message      *messageHandler.MessageHandler
	Admin        *adminHandler.AdminHandler
	WS           *wsHandler.WSHandler

	AuthMW     *middleware.AuthMiddleware
	EngineAuth gin.HandlerFunc
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "leadscout-api"})
	})

	// Websocket upgrade; authenticates via ?token since browsers cannot
	// set headers on the upgrade request.
	r.GET("/ws", h.WS.Connect)

	api := r.Group("/api/v1")

	// ----- Auth -----
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/forgot-password", h.Auth.ForgotPassword)
		auth.POST("/reset-password", h.Auth.ResetPassword)

		authed := auth.Group("")
		authed.Use(h.AuthMW.Auth())
		{
			authed.POST("/logout", h.Auth.Logout)
			authed.GET("/me", h.Auth.Me)
		}
	}

	// ----- Plans (catalog is public, management is admin) -----
	plans := api.Group("/plans")
	{
		plans.GET("", h.Plan.ListPlans)
		plans.GET("/:id", h.Plan.GetPlan)

		managed := plans.Group("")
		managed.Use(h.AuthMW.AdminOnly()...)
		{
			managed.POST("", h.Plan.CreatePlan)
			managed.PUT("/:id", h.Plan.UpdatePlan)
			managed.DELETE("/:id", h.Plan.RetirePlan)
		}
	}

	// ----- Subscriptions -----
	subs := api.Group("/subscriptions")
	subs.Use(h.AuthMW.Auth())
	{
		subs.GET("", h.Subscription.ListMine)
		subs.GET("/active", h.Subscription.Status)
		subs.POST("", h.Subscription.Subscribe)
		subs.DELETE("/:id", h.Subscription.Cancel)
	}

	// ----- Payments -----
	payments := api.Group("/payments")
	payments.Use(h.AuthMW.Auth())
	{
		payments.POST("", h.Payment.Create)
		payments.GET("", h.Payment.ListMine)
		payments.GET("/:id", h.Payment.Get)
	}
	paymentAdmin := api.Group("/payments")
	paymentAdmin.Use(h.AuthMW.AdminOnly()...)
	{
		paymentAdmin.PATCH("/:id/status", h.Payment.UpdateStatus)
	}

	// ----- Scraping jobs (paying customers only) -----
	scrapes := api.Group("/scrapes")
	scrapes.Use(h.AuthMW.Subscribed()...)
	{
		scrapes.POST("", h.Scrape.Launch)
		scrapes.GET("", h.Scrape.ListMine)
		scrapes.GET("/:id", h.Scrape.Get)
	}

	// ----- Engine callbacks (shared-token auth, not user JWTs) -----
	engine := api.Group("/engine")
	engine.Use(h.EngineAuth)
	{
		engine.POST("/jobs/:reference/status", h.Scrape.ReportStatus)
		engine.POST("/jobs/:reference/candidates", h.Scrape.IngestCandidates)
	}

	// ----- Candidates -----
	candidates := api.Group("/candidates")
	candidates.Use(h.AuthMW.Subscribed()...)
	{
		candidates.GET("", h.Candidate.List)
		candidates.GET("/:id", h.Candidate.Get)
	}

	// ----- Leads -----
	leads := api.Group("/leads")
	leads.Use(h.AuthMW.Subscribed()...)
	{
		leads.POST("", h.Lead.Create)
		leads.GET("", h.Lead.ListMine)
		leads.GET("/export", h.Lead.ExportCSV)
		leads.GET("/:id", h.Lead.Get)
		leads.PATCH("/:id", h.Lead.Update)
		leads.DELETE("/:id", h.Lead.Delete)
	}

	// ----- Messages -----
	messages := api.Group("/messages")
	messages.Use(h.AuthMW.Subscribed()...)
	{
		messages.POST("", h.Message.Send)
		messages.GET("/:leadId", h.Message.Thread)
	}

	// ----- Admin console -----
	admin := api.Group("/admin")
	admin.Use(h.AuthMW.AdminOnly()...)
	{
		admin.GET("/users", h.Admin.ListUsers)
		admin.GET("/users/:id", h.Admin.GetUser)
		admin.POST("/users/:id/disable", h.Admin.DisableUser)
		admin.POST("/users/:id/enable", h.Admin.EnableUser)
		admin.GET("/payments", h.Admin.ListPayments)
		admin.GET("/scrapes", h.Admin.ListScrapes)
		admin.GET("/stats", h.Admin.Stats)
	}
}
