package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
	"github.com/yanqian/kai-insight/pkg/metrics"
)

type analyzeRequest struct {
	Text string `json:"text"`
	Save *bool  `json:"save,omitempty"`
}

type analyzeResponse struct {
	Result     analysis.Result     `json:"result"`
	HistoryID  string              `json:"historyId,omitempty"`
	DurationMs int64               `json:"durationMs"`
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// Analyze runs one label through the model and records it in history unless save is false.
func (h *Handler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.analysisSvc.Analyze(c.Request.Context(), analysis.Request{Text: req.Text})
	if err != nil {
		abortWithAnalysisError(c, err)
		return
	}

	out := analyzeResponse{Result: resp.Result, DurationMs: resp.DurationMs, TokenUsage: resp.TokenUsage}
	if req.Save == nil || *req.Save {
		item, err := h.historySvc.Add(c.Request.Context(), owner(c), strings.TrimSpace(req.Text), resp.Result)
		if err != nil {
			h.logger.Warn("failed to record analysis in history", "error", err)
		} else {
			out.HistoryID = item.ID
		}
	}
	c.JSON(http.StatusOK, out)
}

type compareRequest struct {
	Texts      []string `json:"texts"`
	HistoryIDs []string `json:"historyIds"`
}

// Compare analyses fresh label texts, or compares stored history items without new model calls.
func (h *Handler) Compare(c *gin.Context) {
	var req compareRequest
	if !bindJSON(c, &req) {
		return
	}
	switch {
	case len(req.Texts) > 0 && len(req.HistoryIDs) > 0:
		abortWithDomainError(c, analysis.ValidationError("Provide either texts or historyIds, not both"))
	case len(req.HistoryIDs) > 0:
		h.compareHistory(c, req.HistoryIDs)
	default:
		cmp, err := h.analysisSvc.Compare(c.Request.Context(), analysis.CompareRequest{Texts: req.Texts})
		if err != nil {
			abortWithAnalysisError(c, err)
			return
		}
		c.JSON(http.StatusOK, cmp)
	}
}

func (h *Handler) compareHistory(c *gin.Context, ids []string) {
	if err := analysis.CheckCompareCount(len(ids)); err != nil {
		abortWithDomainError(c, err)
		return
	}
	products := make([]analysis.ComparedProduct, 0, len(ids))
	for _, id := range ids {
		item, err := h.historySvc.Get(c.Request.Context(), owner(c), id)
		if err != nil {
			abortWithDomainError(c, err)
			return
		}
		label := item.Result.ProductIdentity.Category
		if label == "" {
			label = item.ID
		}
		products = append(products, analysis.ComparedProduct{Label: label, Result: item.Result})
	}
	c.JSON(http.StatusOK, analysis.NewComparison(products))
}
