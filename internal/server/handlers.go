package server

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/extratos/verifier/internal/buildinfo"
	"github.com/extratos/verifier/internal/reconcile"
	"github.com/extratos/verifier/internal/report"
	"github.com/extratos/verifier/internal/session"
	"github.com/extratos/verifier/internal/source"
)

const defaultUploadName = "statement.csv"

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: buildinfo.Version})
}

func (s *Server) createSession(c *gin.Context) {
	id := s.store.Create()
	s.logger.Debug("session created", "id", id)
	c.JSON(http.StatusCreated, CreateSessionResponse{ID: id.String()})
}

func (s *Server) getSession(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	sess, err := s.store.Get(id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{
		ID:           id.String(),
		Statements:   nonNil(sess.Statements),
		TotalRecords: len(sess.Records),
		Sample:       newMovementResponses(sess.Sample(SampleSize)),
		ExpectedText: sess.ExpectedText,
		Reconciled:   sess.Reconciled(),
	})
}

func (s *Server) deleteSession(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	if err := s.store.Delete(id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type upload struct {
	name string
	text string
}

// addStatements accepts multipart "file" fields or a raw text body named by ?name=.
func (s *Server) addStatements(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	if _, err := s.store.Get(id); err != nil {
		s.writeError(c, err)
		return
	}

	uploads, err := s.readStatements(c)
	if err != nil {
		s.badRequest(c, err.Error())
		return
	}

	var added []session.StatementInfo
	sess, err := s.store.Update(id, func(sess session.Session) (session.Session, error) {
		for _, u := range uploads {
			var info session.StatementInfo
			sess, info = s.service.AddStatement(sess, u.name, u.text)
			added = append(added, info)
		}
		return sess, nil
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatementsResponse{
		Added:        added,
		TotalRecords: len(sess.Records),
		Sample:       newMovementResponses(sess.Sample(SampleSize)),
	})
}

func (s *Server) readStatements(c *gin.Context) ([]upload, error) {
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		files, err := formFiles(c)
		if err != nil {
			return nil, err
		}
		uploads := make([]upload, 0, len(files))
		for _, fh := range files {
			text, err := s.decodeUpload(fh)
			if err != nil {
				return nil, err
			}
			uploads = append(uploads, upload{name: fh.Filename, text: text})
		}
		return uploads, nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty statement body")
	}
	name := c.DefaultQuery("name", defaultUploadName)
	text, err := source.DecodeStatement(bytes.NewReader(body), name, s.config.Encoding)
	if err != nil {
		return nil, err
	}
	return []upload{{name: name, text: text}}, nil
}

func (s *Server) decodeUpload(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", &source.ReadError{Path: fh.Filename, Err: err}
	}
	defer f.Close()
	return source.DecodeStatement(f, fh.Filename, s.config.Encoding)
}

func (s *Server) prefillExpected(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	if _, err := s.store.Get(id); err != nil {
		s.writeError(c, err)
		return
	}

	files, err := formFiles(c)
	if err != nil {
		s.badRequest(c, err.Error())
		return
	}
	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		s.badRequest(c, err.Error())
		return
	}
	defer f.Close()

	grid, err := source.ReadGridFrom(f, fh.Filename)
	if err != nil {
		s.badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, PrefillResponse{ExpectedText: s.service.PrefillExpected(grid)})
}

func (s *Server) reconcile(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	sess, err := s.store.Update(id, func(sess session.Session) (session.Session, error) {
		return s.service.Reconcile(sess, req.ExpectedText)
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReconcileResponse(*sess.Result))
}

// report downloads the text report, or the CSV export with ?format=csv.
func (s *Server) report(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	sess, err := s.store.Get(id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	now := s.now()
	if c.Query("format") == "csv" {
		var buf bytes.Buffer
		if err := s.service.WriteCSV(&buf, sess); err != nil {
			s.writeError(c, err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename="+report.CSVFilename(now))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
		return
	}

	text, err := s.service.Report(sess, now)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+report.Filename(now))
	c.Data(http.StatusOK, report.ContentType, []byte(text))
}

func (s *Server) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Code: ErrCodeNotFound, Message: ErrSessionNotFound.Error()})
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Code: ErrCodeBadRequest, Message: msg})
}

func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Code: ErrCodeNotFound, Message: err.Error()})
	case errors.Is(err, reconcile.ErrMissingData):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Code: ErrCodeMissingData, Message: err.Error()})
	case errors.Is(err, source.ErrSourceRead):
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: ErrCodeBadRequest, Message: err.Error()})
	default:
		s.logger.Error("request failed", "err", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: ErrCodeInternal, Message: "an internal error occurred"})
	}
}

func formFiles(c *gin.Context) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.New("expected a multipart upload with a \"file\" field")
	}
	files := form.File["file"]
	if len(files) == 0 {
		return nil, errors.New("no \"file\" field in upload")
	}
	return files, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
