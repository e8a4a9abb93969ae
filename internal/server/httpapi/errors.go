package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"filedrop/internal/common"
)

// errorKinds maps sentinel errors to the machine-readable kind reported in
// the JSON envelope. Anything unmapped is reported as internal_error so
// wrapped driver or storage details never reach the client.
var errorKinds = []struct {
	err    error
	status int
	kind   string
}{
	{common.ErrValidation, http.StatusBadRequest, "validation_error"},
	{common.ErrDuplicateUser, http.StatusBadRequest, "duplicate_user"},
	{common.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{common.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
	{common.ErrTokenExpired, http.StatusUnauthorized, "token_expired"},
	{common.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{common.ErrNotFound, http.StatusNotFound, "not_found"},
	{common.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, "payload_too_large"},
	{common.ErrUnsupportedType, http.StatusUnsupportedMediaType, "unsupported_type"},
}

func abortWithError(c *gin.Context, err error) {
	for _, m := range errorKinds {
		if errors.Is(err, m.err) {
			c.AbortWithStatusJSON(m.status, gin.H{"error": m.kind, "message": m.err.Error()})
			return
		}
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "internal error"})
}
