package server

import (
	"errors"
	"net/http"
	"time"

	"coupon-studio/internal/model"
	"coupon-studio/internal/service"
	apperrors "coupon-studio/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server wires the coupon service to its HTTP surface
type Server struct {
	svc    *service.CouponService
	logger *zap.Logger
}

// New creates a new Server
func New(svc *service.CouponService, logger *zap.Logger) *Server {
	return &Server{
		svc:    svc,
		logger: logger,
	}
}

// Router builds the gin engine with all routes registered
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/coupons", s.createCoupon)
		api.GET("/coupons", s.listCoupons)
		api.POST("/coupons/apply", s.applyCoupon)
		api.GET("/coupons/:code", s.getCouponDetails)
		api.DELETE("/coupons/:code", s.deactivateCoupon)
	}

	return router
}

// requestLogger emits one structured log line per request, levelled by
// status class
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		switch {
		case status >= 500:
			s.logger.Error("http_request", fields...)
		case status >= 400:
			s.logger.Warn("http_request", fields...)
		default:
			s.logger.Info("http_request", fields...)
		}
	}
}

// createCoupon handles POST /api/coupons
func (s *Server) createCoupon(c *gin.Context) {
	var req model.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "reason": "InvalidField"})
		return
	}

	coupon, err := s.svc.CreateCoupon(c.Request.Context(), &req)
	if err != nil {
		var fieldErr *apperrors.InvalidFieldError
		switch {
		case errors.As(err, &fieldErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": fieldErr.Error(), "reason": "InvalidField"})
		case errors.Is(err, apperrors.ErrDuplicateCode):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "reason": "DuplicateCode"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create coupon"})
		}
		return
	}

	c.JSON(http.StatusCreated, coupon.Projection(time.Now().UTC()))
}

// listCoupons handles GET /api/coupons
func (s *Server) listCoupons(c *gin.Context) {
	coupons, err := s.svc.ListCoupons(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list coupons"})
		return
	}

	c.JSON(http.StatusOK, coupons)
}

// applyCoupon handles POST /api/coupons/apply. Rule failures are
// business outcomes, not transport errors: they come back as 200 with
// valid=false and a machine-readable reason.
func (s *Server) applyCoupon(c *gin.Context) {
	var req model.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "reason": "InvalidField"})
		return
	}

	result, err := s.svc.ApplyCoupon(c.Request.Context(), &req)
	if err != nil {
		reason := apperrors.Reason(err)
		if reason == "Internal" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply coupon"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"valid": false, "reason": reason})
		return
	}

	c.JSON(http.StatusOK, result)
}

// getCouponDetails handles GET /api/coupons/:code
func (s *Server) getCouponDetails(c *gin.Context) {
	code := c.Param("code")

	details, err := s.svc.GetCouponDetails(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, apperrors.ErrCouponNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "coupon not found", "reason": "NotFound"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get coupon details"})
		return
	}

	c.JSON(http.StatusOK, details)
}

// deactivateCoupon handles DELETE /api/coupons/:code
func (s *Server) deactivateCoupon(c *gin.Context) {
	code := c.Param("code")

	if err := s.svc.DeactivateCoupon(c.Request.Context(), code); err != nil {
		if errors.Is(err, apperrors.ErrCouponNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "coupon not found", "reason": "NotFound"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deactivate coupon"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "coupon deactivated"})
}
