package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"zipfit/internal/app"
	"zipfit/internal/retrieval"
	"zipfit/internal/transport/http/response"
)

type Searcher interface {
	Search(ctx context.Context, in app.SearchInput) ([]retrieval.Result, error)
}

type SearchHandler struct {
	search Searcher
}

type SearchRequest struct {
	Query           string `json:"query" binding:"required,max=500"`
	TopK            int    `json:"top_k" binding:"min=0,max=50"`
	AnnouncementIDs []uint `json:"announcement_ids"`
}

func NewSearchHandler(search Searcher) *SearchHandler {
	return &SearchHandler{search: search}
}

func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	results, err := h.search.Search(c.Request.Context(), app.SearchInput{
		Query:           req.Query,
		TopK:            req.TopK,
		AnnouncementIDs: req.AnnouncementIDs,
	})
	if err != nil {
		writeError(c, err, "search failed")
		return
	}
	response.OK(c, gin.H{"results": results, "count": len(results)})
}
