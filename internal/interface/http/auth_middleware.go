package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/kai-insight/internal/domain/auth"
	apperrors "github.com/yanqian/kai-insight/pkg/errors"
)

func authMiddleware(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing authorization header", nil))
			return
		}
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid authorization header", nil))
			return
		}
		claims, err := svc.ValidateToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			if apperrors.IsCode(err, auth.CodeInvalidToken) {
				abortWithError(c, NewHTTPError(http.StatusUnauthorized, auth.CodeInvalidToken, "invalid or expired token", err))
				return
			}
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "auth_failed", "failed to validate token", err))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

const authClaimsKey = "auth_claims"

func setClaims(c *gin.Context, claims auth.Claims) {
	c.Set(authClaimsKey, claims)
}

// owner is the storage scope of the authenticated caller, empty before authMiddleware ran.
func owner(c *gin.Context) string {
	value, ok := c.Get(authClaimsKey)
	if !ok {
		return ""
	}
	claims, _ := value.(auth.Claims)
	return claims.UserID
}
