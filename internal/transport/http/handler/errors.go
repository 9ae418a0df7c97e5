package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"zipfit/internal/ai"
	"zipfit/internal/app"
	"zipfit/internal/pdfparse"
	"zipfit/internal/retrieval"
	"zipfit/internal/transport/http/response"
)

// writeError maps service errors onto HTTP status and envelope codes.
// Unknown errors are logged and answered with fallback.
func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrMessageEmpty):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrUsernameExists):
		response.Error(c, http.StatusConflict, response.CodeUsernameExists, err.Error())
	case errors.Is(err, app.ErrEmailExists):
		response.Error(c, http.StatusConflict, response.CodeEmailExists, err.Error())
	case errors.Is(err, app.ErrInvalidCredential):
		response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, err.Error())
	case errors.Is(err, app.ErrRegisterClosed):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
	case errors.Is(err, app.ErrAnnouncementNotFound):
		response.Error(c, http.StatusNotFound, response.CodeAnnouncementNotFound, err.Error())
	case errors.Is(err, app.ErrChatNotFound):
		response.Error(c, http.StatusNotFound, response.CodeChatNotFound, err.Error())
	case errors.Is(err, app.ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeFileTooLarge, err.Error())
	case errors.Is(err, pdfparse.ErrUnsupportedFormat):
		response.Error(c, http.StatusUnsupportedMediaType, response.CodeUnsupportedFile, err.Error())
	case errors.Is(err, pdfparse.ErrEmptyFile), errors.Is(err, app.ErrNoChunks):
		response.Error(c, http.StatusUnprocessableEntity, response.CodeUnprocessableFile, err.Error())
	case errors.Is(err, retrieval.ErrTimeout):
		response.Error(c, http.StatusGatewayTimeout, response.CodeTimeout, "retrieval timed out")
	case errors.Is(err, ai.ErrUpstream), errors.Is(err, ai.ErrEmbeddingCount),
		errors.Is(err, ai.ErrEmbeddingDimension), errors.Is(err, retrieval.ErrInvalidEmbedding):
		log.Printf("handler upstream failed: %v", err)
		response.Error(c, http.StatusBadGateway, response.CodeUpstream, "llm upstream failed")
	case errors.Is(err, app.ErrMessageEnqueue), errors.Is(err, app.ErrJobEnqueue):
		response.Error(c, http.StatusServiceUnavailable, response.CodeUnavailable, err.Error())
	default:
		log.Printf("handler %s: %v", fallback, err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
