package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ginjaninja78/torg12/internal/api/middleware"
	"github.com/ginjaninja78/torg12/internal/api/responses"
	"github.com/ginjaninja78/torg12/internal/config"
	"github.com/ginjaninja78/torg12/internal/converter"
	"github.com/ginjaninja78/torg12/internal/grid"
	"github.com/ginjaninja78/torg12/internal/report"
	"github.com/ginjaninja78/torg12/internal/torg12"
)

// Torg12Handler serves invoice recognition over HTTP.
type Torg12Handler struct {
	cfg      *config.MainConfig
	profiles []*config.SupplierProfile
	logger   *zap.Logger
}

// NewTorg12Handler creates a new recognition handler.
func NewTorg12Handler(cfg *config.MainConfig, profiles []*config.SupplierProfile, logger *zap.Logger) *Torg12Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Torg12Handler{
		cfg:      cfg,
		profiles: profiles,
		logger:   logger,
	}
}

// HandleParse recognizes an uploaded workbook.
//
// The workbook is sent as the multipart field "file". The optional query
// parameter "format" selects json (default, wrapped in the API envelope),
// xml or xlsx (returned as a download). The optional "profile" parameter
// forces a supplier profile by code; otherwise the profile is chosen by the
// uploaded file name.
//
// Status codes: 400 for a missing, mislabelled or unreadable file, 413 when
// the upload exceeds the configured limit, 422 when no invoice table can be
// located.
func (h *Torg12Handler) HandleParse(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Server.MaxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			responses.Error(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Workbook exceeds %d bytes", h.cfg.Server.MaxUploadBytes))
			return
		}
		responses.Error(c, http.StatusBadRequest, "Workbook (.xls, .xlsx) not found or invalid")
		return
	}

	if !grid.IsWorkbookFile(fileHeader.Filename) {
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Unsupported file extension: %q", ext))
		return
	}

	format, err := report.ParseFormat(c.DefaultQuery("format", string(report.FormatJSON)))
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Unsupported report format", err.Error())
		return
	}

	profile, err := h.profileFor(c.Query("profile"), fileHeader.Filename)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Could not open the uploaded workbook")
		return
	}
	defer file.Close()

	log := h.logger.With(
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("file", fileHeader.Filename),
	)
	if profile != nil {
		log = log.With(zap.String("profile", profile.Code))
	}

	parser, err := converter.NewParser(h.cfg.Parser, profile, log.Sugar())
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Recognizer is misconfigured", err.Error())
		return
	}

	invoice, err := parser.ParseReader(file, fileHeader.Filename)
	switch {
	case errors.Is(err, torg12.ErrStructure):
		responses.Error(c, http.StatusUnprocessableEntity, "No invoice table found", err.Error())
		return
	case errors.Is(err, torg12.ErrUnreadable):
		responses.Error(c, http.StatusBadRequest, "Workbook could not be read", err.Error())
		return
	case err != nil:
		responses.Error(c, http.StatusInternalServerError, "Recognition failed", err.Error())
		return
	}

	if format == report.FormatJSON {
		message := "Invoice recognized"
		if !invoice.IsValid() {
			message = "Invoice recognized with errors"
		}
		responses.Success(c, report.NewView(invoice), message)
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, invoice, format); err != nil {
		responses.Error(c, http.StatusInternalServerError, "Could not render the report", err.Error())
		return
	}

	base := strings.TrimSuffix(filepath.Base(fileHeader.Filename), filepath.Ext(fileHeader.Filename))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+format.Extension()))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// profileFor picks the profile named by code, or the one matching fileName.
func (h *Torg12Handler) profileFor(code, fileName string) (*config.SupplierProfile, error) {
	if code == "" {
		return config.SelectProfile(h.profiles, fileName), nil
	}
	if p := config.ProfileByCode(h.profiles, code); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("unknown supplier profile %q", code)
}
