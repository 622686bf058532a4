package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/kai-insight/internal/domain/preferences"
)

func (h *Handler) GetPreferences(c *gin.Context) {
	prefs, err := h.preferencesSvc.Get(c.Request.Context(), owner(c))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *Handler) UpdatePreferences(c *gin.Context) {
	var patch preferences.Patch
	if !bindJSON(c, &patch) {
		return
	}
	prefs, err := h.preferencesSvc.Update(c.Request.Context(), owner(c), patch)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

type themeBody struct {
	Theme preferences.Theme `json:"theme"`
}

func (h *Handler) GetTheme(c *gin.Context) {
	theme, err := h.preferencesSvc.Theme(c.Request.Context(), owner(c))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, themeBody{Theme: theme})
}

func (h *Handler) SetTheme(c *gin.Context) {
	var body themeBody
	if !bindJSON(c, &body) {
		return
	}
	if err := h.preferencesSvc.SetTheme(c.Request.Context(), owner(c), body.Theme); err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

// ToggleTheme advances light → dark → system → light.
func (h *Handler) ToggleTheme(c *gin.Context) {
	theme, err := h.preferencesSvc.ToggleTheme(c.Request.Context(), owner(c))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, themeBody{Theme: theme})
}

func (h *Handler) ListBookmarks(c *gin.Context) {
	bookmarks, err := h.preferencesSvc.Bookmarks(c.Request.Context(), owner(c))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarks": bookmarks})
}

type bookmarkBody struct {
	Note string `json:"note"`
}

// PutBookmark pins an existing history item; repeating the call is a no-op.
func (h *Handler) PutBookmark(c *gin.Context) {
	var body bookmarkBody
	if c.Request.ContentLength > 0 && !bindJSON(c, &body) {
		return
	}
	ctx, id := c.Request.Context(), c.Param("id")
	if _, err := h.historySvc.Get(ctx, owner(c), id); err != nil {
		abortWithDomainError(c, err)
		return
	}
	bookmark, err := h.preferencesSvc.AddBookmark(ctx, owner(c), id, body.Note)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookmark)
}

func (h *Handler) DeleteBookmark(c *gin.Context) {
	if err := h.preferencesSvc.RemoveBookmark(c.Request.Context(), owner(c), c.Param("id")); err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
