package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/mlthieu/linkstats/internal/errors"
	"github.com/mlthieu/linkstats/internal/geoip"
	"github.com/mlthieu/linkstats/internal/models"
	"github.com/mlthieu/linkstats/internal/services"
)

// Handlers bundles the services the HTTP layer depends on.
type Handlers struct {
	Links     *services.LinkService
	Analytics *services.AnalyticsService
	Auth      *services.AuthService
}

// SetupRoutes configures all gin routes. The redirect route sits at the root
// so short URLs stay as short as possible; everything else lives under /api.
func SetupRoutes(router *gin.Engine, h Handlers) {
	router.GET("/health", HealthCheckHandler)

	auth := router.Group("/api/auth")
	{
		auth.POST("/register", RegisterHandler(h.Auth))
		auth.POST("/login", LoginHandler(h.Auth))
	}

	urls := router.Group("/api/urls")
	urls.Use(AuthMiddleware(h.Auth))
	{
		urls.POST("", CreateLinkHandler(h.Links))
		urls.GET("", ListLinksHandler(h.Links))
		urls.GET("/:id/analytics", AnalyticsHandler(h.Analytics))
	}

	router.GET("/:shortUrl", RedirectHandler(h.Links))
}

// HealthCheckHandler handles /health for load balancers and monitoring.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RegisterRequest is the JSON body for POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateLinkRequest is the JSON body for POST /api/urls. ExpirationDate
// accepts RFC3339 or a plain date.
type CreateLinkRequest struct {
	LongURL        string `json:"longUrl"`
	Alias          string `json:"alias"`
	ExpirationDate string `json:"expirationDate"`
}

// RegisterHandler creates a new account and returns it with a bearer token.
func RegisterHandler(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidation("Invalid request body"))
			return
		}

		user, token, err := authService.Register(req.Name, req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"token":   token,
			"user":    user,
		})
	}
}

// LoginHandler authenticates an account and returns a bearer token.
func LoginHandler(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidation("Invalid request body"))
			return
		}

		user, token, err := authService.Login(req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"token":   token,
			"user":    user,
		})
	}
}

// CreateLinkHandler handles POST /api/urls for the authenticated user.
func CreateLinkHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			abortUnauthorized(c, "Authentication required")
			return
		}

		var req CreateLinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidation("Invalid request body"))
			return
		}

		expiration, err := parseExpiration(req.ExpirationDate)
		if err != nil {
			respondError(c, err)
			return
		}

		link, err := linkService.CreateLink(user.ID, services.CreateLinkInput{
			LongURL:        req.LongURL,
			Alias:          req.Alias,
			ExpirationDate: expiration,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"data":    link,
		})
	}
}

// ListLinksHandler handles GET /api/urls with pagination and search.
func ListLinksHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			abortUnauthorized(c, "Authentication required")
			return
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		search := c.Query("search")

		// Clamp here so totalPages is computed with the same page size the
		// query used.
		page, limit = services.NormalizePagination(page, limit)

		links, total, err := linkService.GetUserLinks(user.ID, page, limit, search)
		if err != nil {
			respondError(c, err)
			return
		}
		if links == nil {
			links = []models.Link{}
		}

		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"count":       len(links),
			"total":       total,
			"currentPage": page,
			"totalPages":  int(math.Ceil(float64(total) / float64(limit))),
			"data":        links,
		})
	}
}

// AnalyticsHandler handles GET /api/urls/:id/analytics for the link owner.
func AnalyticsHandler(analyticsService *services.AnalyticsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			abortUnauthorized(c, "Authentication required")
			return
		}

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			respondError(c, apperrors.ErrLinkNotFound)
			return
		}

		link, analytics, err := analyticsService.LinkAnalytics(uint(id), user.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"url":       link,
				"analytics": analytics,
			},
		})
	}
}

// RedirectHandler resolves a short URL and issues a 302 to the destination.
// The click is recorded before the redirect; a failed write fails the whole
// request rather than redirecting with the click lost.
func RedirectHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shortURL := c.Param("shortUrl")

		meta := models.ClickMeta{
			IP:        c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
			Referrer:  c.GetHeader("Referer"),
			Country:   c.GetHeader(geoip.CountryHeader),
		}

		link, err := linkService.ResolveRedirect(shortURL, meta)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Redirect(http.StatusFound, link.LongURL)
	}
}

// parseExpiration parses the optional expiration date from a request body.
func parseExpiration(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	return nil, apperrors.NewValidation("Invalid expiration date format")
}

// respondError translates an error into the uniform JSON error envelope.
// Unrecognized errors are logged and reported as a generic server error so
// internals never leak to clients.
func respondError(c *gin.Context, err error) {
	var ve apperrors.ValidationError
	status := http.StatusInternalServerError
	message := "Server Error"

	switch {
	case errors.As(err, &ve):
		status, message = http.StatusBadRequest, ve.Message
	case errors.Is(err, apperrors.ErrAliasTaken):
		status, message = http.StatusBadRequest, "Alias already exists"
	case errors.Is(err, apperrors.ErrLinkExpired):
		status, message = http.StatusBadRequest, "URL has expired"
	case errors.Is(err, apperrors.ErrLinkNotFound):
		status, message = http.StatusNotFound, "URL not found"
	case errors.Is(err, apperrors.ErrNotOwner):
		status, message = http.StatusUnauthorized, "Not authorized"
	case errors.Is(err, apperrors.ErrEmailTaken):
		status, message = http.StatusBadRequest, "Email already registered"
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, apperrors.ErrShortCodeGenerationFailed):
		status, message = http.StatusServiceUnavailable, "Unable to generate unique short code"
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}
