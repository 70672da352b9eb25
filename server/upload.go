package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"sheetviz/internal/sheet"
	"sheetviz/internal/workspace"
)

var (
	errNoFile       = errors.New("no file selected")
	errFileTooLarge = errors.New("file too large")
)

type uploadResult struct {
	Dataset   *sheet.Dataset
	Committed bool
	Ignored   bool
	Stale     bool
}

// formFile returns the multipart "file" field under the upload size limit.
func (s *Server) formFile(c *gin.Context) (*multipart.FileHeader, error) {
	if c.Request.ContentLength > s.cfg.MaxUploadSize {
		return nil, errFileTooLarge
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadSize)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, errFileTooLarge
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return nil, errNoFile
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if _, err := sheet.FormatOf(header.Filename); err != nil {
		return nil, err
	}
	return header, nil
}

func (s *Server) decode(header *multipart.FileHeader) (*sheet.Dataset, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	d, err := sheet.Decode(header.Filename, file, sheet.DecodeOptions{MaxRows: s.cfg.MaxRows})
	if err != nil {
		log.Warnf("[upload] %s: %v", header.Filename, err)
		return nil, err
	}
	d.FileSize = header.Size
	return d, nil
}

// upload decodes the multipart "file" field and commits it to ws under a
// fresh upload ticket, so a slower earlier upload can never overwrite it.
func (s *Server) upload(c *gin.Context, ws *workspace.Workspace) (uploadResult, error) {
	var res uploadResult
	header, err := s.formFile(c)
	if err != nil {
		return res, err
	}

	ticket := ws.Begin()
	d, err := s.decode(header)
	if err != nil {
		ws.Abort(ticket)
		return res, err
	}
	res.Dataset = d

	committed, err := ws.Commit(ticket, d)
	switch {
	case errors.Is(err, workspace.ErrStaleUpload):
		log.Infof("[upload] %s superseded by a newer upload, discarded", header.Filename)
		res.Stale = true
		return res, nil
	case err != nil:
		return res, err
	case !committed:
		log.Debugf("[upload] %s has no data rows, ignored", header.Filename)
		res.Ignored = true
		return res, nil
	}
	res.Committed = true
	log.Infof("[upload] %s: %d rows, fields=%v numeric=%v", header.Filename, d.Len(), d.Fields, d.Numeric())
	return res, nil
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	var decodeErr *sheet.DecodeError
	switch {
	case errors.Is(err, errFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &decodeErr),
		errors.Is(err, errNoFile),
		errors.Is(err, sheet.ErrUnsupportedFormat),
		errors.Is(err, sheet.ErrTooManyRows),
		errors.Is(err, workspace.ErrNoDataset),
		errors.Is(err, workspace.ErrUnknownField),
		errors.Is(err, workspace.ErrNotNumeric),
		errors.Is(err, workspace.ErrInvalidKind):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
