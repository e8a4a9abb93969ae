package httpapi

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"filedrop/internal/common"
)

const ctxUserIDKey = "userID"

// requireAuth validates the Authorization bearer token and stores the
// authenticated user id on the request context. Every failure mode answers
// with the same unauthorized envelope; the rejection reason (missing header,
// bad signature, expiry) is never exposed to the caller.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			abortWithError(c, common.ErrUnauthorized)
			return
		}
		claims, err := s.signer.VerifyAccess(strings.TrimPrefix(header, prefix))
		if err != nil {
			abortWithError(c, common.ErrUnauthorized)
			return
		}
		c.Set(ctxUserIDKey, claims.UserID)
		c.Next()
	}
}

// currentUserID returns the user id stored by requireAuth. Routes outside the
// authenticated group have no user id; callers get 0 and false.
func currentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
