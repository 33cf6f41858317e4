package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"ticket-stats/internal/pipeline"
)

// AllowedExtensions are the spreadsheet extensions accepted by /upload.
var AllowedExtensions = []string{".xlsx", ".xls"}

// ErrUnsupportedExtension is returned for uploads that are not spreadsheets.
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// Client-facing messages of the upload envelope.
const (
	MsgInvalidContentType = "无效的内容类型"
	MsgMissingFile        = "未找到上传文件"
	MsgEmptyFilename      = "文件名为空"
	MsgUnsupportedType    = "只支持Excel文件(.xlsx/.xls)"
	MsgTooLarge           = "文件过大"
	MsgBusy               = "另一个上传正在处理中"
	MsgSuccess            = "文件上传成功"
	MsgFailedPrefix       = "处理失败: "
)

// Envelope is the JSON body of every /upload response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func reply(c echo.Context, status int, ok bool, msg string) error {
	return c.JSON(status, Envelope{Success: ok, Message: msg})
}

// ValidateFilename checks the upload's extension, case-insensitively.
func ValidateFilename(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(AllowedExtensions, ext) {
		return fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
	return nil
}

// handleUpload validates the request completely before touching the file system.
func (s *Server) handleUpload(c echo.Context) error {
	req := c.Request()
	if !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return reply(c, http.StatusBadRequest, false, MsgInvalidContentType)
	}

	req.Body = http.MaxBytesReader(c.Response(), req.Body, s.cfg.MaxUploadMB<<20)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return reply(c, http.StatusRequestEntityTooLarge, false, MsgTooLarge)
		}
		return reply(c, http.StatusBadRequest, false, MsgMissingFile)
	}
	if fileHeader.Filename == "" {
		return reply(c, http.StatusBadRequest, false, MsgEmptyFilename)
	}
	if err := ValidateFilename(fileHeader.Filename); err != nil {
		log.Warn().Str("filename", fileHeader.Filename).Msg("Rejected upload")
		return reply(c, http.StatusBadRequest, false, MsgUnsupportedType)
	}

	staged, err := s.stage(fileHeader)
	if err != nil {
		log.Error().Err(err).Msg("Failed to stage upload")
		return reply(c, http.StatusInternalServerError, false, MsgFailedPrefix+err.Error())
	}

	res, err := s.replacer.Replace(req.Context(), staged)
	if err != nil {
		if errors.Is(err, pipeline.ErrBusy) {
			return reply(c, http.StatusConflict, false, MsgBusy)
		}
		return reply(c, http.StatusInternalServerError, false, MsgFailedPrefix+err.Error())
	}

	log.Info().
		Str("filename", fileHeader.Filename).
		Int64("size", fileHeader.Size).
		Int("tickets", res.Document.Summary.TotalTickets).
		Msg("Upload processed")
	return reply(c, http.StatusOK, true, MsgSuccess)
}

// stage copies the upload next to the ticket workbook under a unique name,
// so the later install is a same-directory rename.
func (s *Server) stage(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dir := filepath.Dir(s.cfg.TicketFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, ".upload-"+uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create staging file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
