package http

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/kai-insight/internal/domain/auth"
)

func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.authSvc.Logout(c.Request.Context(), owner(c)); err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Profile(c *gin.Context) {
	user, err := h.authSvc.Profile(c.Request.Context(), owner(c))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req auth.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.authSvc.UpdateProfile(c.Request.Context(), owner(c), req)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GoogleLogin starts the PKCE authorization code flow.
func (h *Handler) GoogleLogin(c *gin.Context) {
	state, verifier, challenge, err := auth.NewOAuthState()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "oauth_state_failed", "failed to start google sign-in", err))
		return
	}
	link, err := h.authSvc.GoogleAuthURL(c.Request.Context(), state, challenge)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	rememberOAuthState(c, state, verifier)
	c.Redirect(http.StatusFound, link)
}

// GoogleCallback completes sign-in. With a post-login URL configured the
// tokens travel in its fragment; otherwise they are returned as JSON.
func (h *Handler) GoogleCallback(c *gin.Context) {
	if reason := c.Query("error"); reason != "" {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "oauth_denied", "google sign-in was cancelled", nil))
		return
	}
	verifier, ok := consumeOAuthState(c, c.Query("state"))
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_oauth_state", "sign-in session expired, please try again", nil))
		return
	}
	resp, err := h.authSvc.LoginWithGoogle(c.Request.Context(), c.Query("code"), verifier)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	if h.postLoginURL == "" {
		c.JSON(http.StatusOK, resp)
		return
	}
	fragment := url.Values{"token": {resp.Token}, "refreshToken": {resp.RefreshToken}}
	c.Redirect(http.StatusFound, h.postLoginURL+"#"+fragment.Encode())
}
