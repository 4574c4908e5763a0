package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/foliopress/foliopress/internal/observability/logger"
	portfoliodomain "github.com/foliopress/foliopress/internal/portfolio/domain"
	"github.com/foliopress/foliopress/internal/providers/pdf"
	"go.uber.org/zap"
)

func (s *Server) GenerateResumePDF(c *gin.Context) {
	var content portfoliodomain.Content
	if err := c.ShouldBindJSON(&content); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	reader, err := s.pdfProvider.GenerateResume(c.Request.Context(), content)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("resume pdf generation failed", zap.Error(err))
		AbortWithError(c, ErrInternal)
		return
	}

	servePDF(c, reader, "resume.pdf")
}

type coverLetterRequest struct {
	Content       portfoliodomain.Content `json:"content"`
	RecipientName string                  `json:"recipient_name"`
	Company       string                  `json:"company"`
	Role          string                  `json:"role"`
	Date          string                  `json:"date"`
	Body          string                  `json:"body"`
}

func (s *Server) GenerateCoverLetterPDF(c *gin.Context) {
	var req coverLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Body == "" {
		AbortWithError(c, newValidationError("body", "invalid_request", "letter body is required"))
		return
	}

	reader, err := s.pdfProvider.GenerateCoverLetter(c.Request.Context(), pdf.CoverLetterData{
		Content:       req.Content,
		RecipientName: req.RecipientName,
		Company:       req.Company,
		Role:          req.Role,
		Date:          req.Date,
		Body:          req.Body,
	})
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("cover letter pdf generation failed", zap.Error(err))
		AbortWithError(c, ErrInternal)
		return
	}

	servePDF(c, reader, "cover-letter.pdf")
}

func servePDF(c *gin.Context, reader io.Reader, filename string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}
