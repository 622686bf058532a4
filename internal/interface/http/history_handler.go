package http

import (
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
	"github.com/yanqian/kai-insight/internal/domain/export"
)

// ListHistory returns the caller's history, filtered by ?q= when present.
func (h *Handler) ListHistory(c *gin.Context) {
	items, err := h.historySvc.Search(c.Request.Context(), owner(c), c.Query("q"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) GetHistory(c *gin.Context) {
	item, err := h.historySvc.Get(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteHistory removes one item and any bookmark pinning it.
func (h *Handler) DeleteHistory(c *gin.Context) {
	ctx, id := c.Request.Context(), c.Param("id")
	if err := h.historySvc.Remove(ctx, owner(c), id); err != nil {
		abortWithDomainError(c, err)
		return
	}
	if err := h.preferencesSvc.RemoveBookmark(ctx, owner(c), id); err != nil {
		h.logger.Warn("failed to drop bookmark of removed history item", "historyId", id, "error", err)
	}
	c.Status(http.StatusNoContent)
}

// ClearHistory empties the caller's history along with every bookmark.
func (h *Handler) ClearHistory(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.historySvc.Clear(ctx, owner(c)); err != nil {
		abortWithDomainError(c, err)
		return
	}
	if err := h.preferencesSvc.ClearBookmarks(ctx, owner(c)); err != nil {
		h.logger.Warn("failed to drop bookmarks of cleared history", "error", err)
	}
	c.Status(http.StatusNoContent)
}

// ExportHistory downloads a stored result in the ?format= representation.
func (h *Handler) ExportHistory(c *gin.Context) {
	item, err := h.historySvc.Get(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	h.renderDocument(c, item.Result)
}

// ExportResult renders a posted result without touching history.
func (h *Handler) ExportResult(c *gin.Context) {
	var result analysis.Result
	if !bindJSON(c, &result) {
		return
	}
	h.renderDocument(c, result)
}

func (h *Handler) renderDocument(c *gin.Context, result analysis.Result) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	doc, err := export.Render(format, result, h.clock.Now())
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	attachment(c, doc.Filename)
	c.Data(http.StatusOK, doc.MIMEType, doc.Body)
}

// HistoryImage serves the generated product image of a stored result.
func (h *Handler) HistoryImage(c *gin.Context) {
	item, err := h.historySvc.Get(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	if item.Result.GeneratedImageURL == "" {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "image_not_found", "this analysis has no generated image", nil))
		return
	}
	mimeType, data, err := export.DecodeImage(item.Result.GeneratedImageURL)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "image_corrupt", "stored image could not be decoded", err))
		return
	}
	attachment(c, "kai-product-"+item.ID+"."+strings.TrimPrefix(mimeType, "image/"))
	c.Data(http.StatusOK, mimeType, data)
}

type shareResponse struct {
	export.SharePayload
	Summary string `json:"summary"`
	Mailto  string `json:"mailto"`
}

// ShareHistory returns the share-sheet payload, clipboard summary and mailto link.
func (h *Handler) ShareHistory(c *gin.Context) {
	item, err := h.historySvc.Get(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, shareResponse{
		SharePayload: export.Share(item.Result),
		Summary:      export.Summary(item.Result),
		Mailto:       export.Mailto(item.Result, h.clock.Now()),
	})
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
}
