package api

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/esstool/internal/logger"
	"github.com/samcharles93/esstool/internal/version"
	"github.com/samcharles93/esstool/internal/webui"
	"github.com/samcharles93/esstool/pkg/ess"
)

const DefaultMaxUploadBytes = 32 << 20

type Config struct {
	Decoder *ess.Decoder
	Logger  logger.Logger
	// MaxUploadBytes caps the request body of POST /v1/saves.
	MaxUploadBytes int64
	// UploadLimiter, when set, guards POST /v1/saves.
	UploadLimiter *RateLimiter
}

type Server struct {
	store     *SaveStore
	decoder   *ess.Decoder
	log       logger.Logger
	maxUpload int64
	limiter   *RateLimiter
	clock     func() time.Time
}

func NewServer(store *SaveStore, cfg Config) *Server {
	if store == nil {
		store = NewSaveStore()
	}
	if cfg.Decoder == nil {
		cfg.Decoder = ess.NewDecoder()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Server{
		store:     store,
		decoder:   cfg.Decoder,
		log:       cfg.Logger,
		maxUpload: cfg.MaxUploadBytes,
		limiter:   cfg.UploadLimiter,
		clock:     time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	var upload []echo.MiddlewareFunc
	if s.limiter != nil {
		upload = append(upload, s.limiter.Middleware())
	}

	e.GET("/healthz", s.handleHealth)
	e.POST("/v1/saves", s.handleUpload, upload...)
	e.GET("/v1/saves", s.handleList)
	e.GET("/v1/saves/:id", s.handleGet)
	e.DELETE("/v1/saves/:id", s.handleDelete)
	e.GET("/v1/saves/:id/plugins", s.handlePlugins)
	e.GET("/v1/saves/:id/screenshot.png", s.handleScreenshot)
	e.GET("/", s.handleIndex)
}

var uiHandler = webui.Handler()

func (s *Server) handleIndex(c *echo.Context) error {
	uiHandler.ServeHTTP(c.Response(), c.Request())
	return nil
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: version.String(),
		Saves:   len(s.store.List()),
	})
}

func (s *Server) handleUpload(c *echo.Context) error {
	body := http.MaxBytesReader(c.Response(), c.Request().Body, s.maxUpload)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return writeError(c, http.StatusRequestEntityTooLarge, "invalid_request_error",
				fmt.Sprintf("save exceeds %d bytes", tooBig.Limit))
		}
		return writeBadRequest(c, err.Error())
	}
	if len(data) == 0 {
		return writeBadRequest(c, "request body is empty")
	}
	if rec, ok := s.store.Lookup(data); ok {
		return c.JSON(http.StatusOK, saveResponse(rec, false))
	}

	rc, err := ess.OpenReader(bytes.NewReader(data))
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	defer func() { _ = rc.Close() }()

	// The cap also bounds the decompressed save.
	limited := &io.LimitedReader{R: rc, N: s.maxUpload + 1}
	sv, err := s.decoder.Decode(limited)
	if err != nil {
		if limited.N <= 0 && errors.Is(err, ess.ErrUnexpectedEOF) {
			return writeError(c, http.StatusRequestEntityTooLarge, "invalid_request_error",
				fmt.Sprintf("decompressed save exceeds %d bytes", s.maxUpload))
		}
		s.log.Warn("rejected save upload", "bytes", len(data), "error", err)
		return writeDecodeError(c, err)
	}

	rec, created := s.store.Put(data, sv, s.clock())
	if !created {
		return c.JSON(http.StatusOK, saveResponse(rec, false))
	}
	s.log.Info("stored save", "id", rec.ID, "player", sv.SaveGameHeader.PlayerName,
		"save", sv.SaveGameHeader.SaveNumber, "diagnostics", len(sv.Diagnostics))
	return c.JSON(http.StatusCreated, saveResponse(rec, false))
}

func (s *Server) handleList(c *echo.Context) error {
	recs := s.store.List()
	out := ListResponse[SaveSummary]{Object: "list", Data: make([]SaveSummary, 0, len(recs))}
	for _, rec := range recs {
		out.Data = append(out.Data, saveSummary(rec))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) lookup(c *echo.Context) (*saveRecord, bool) {
	id := c.Param("id")
	if id == "" {
		return nil, false
	}
	return s.store.Get(id)
}

func (s *Server) handleGet(c *echo.Context) error {
	rec, ok := s.lookup(c)
	if !ok {
		return writeNotFound(c)
	}
	return c.JSON(http.StatusOK, saveResponse(rec, true))
}

func (s *Server) handleDelete(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c)
	}
	return c.JSON(http.StatusOK, DeleteResponse{ID: id, Object: "save", Deleted: true})
}

func (s *Server) handlePlugins(c *echo.Context) error {
	rec, ok := s.lookup(c)
	if !ok {
		return writeNotFound(c)
	}
	out := ListResponse[Plugin]{Object: "list", Data: make([]Plugin, 0, len(rec.Save.Plugins))}
	for i, name := range rec.Save.Plugins {
		out.Data = append(out.Data, Plugin{Index: i, Name: name})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleScreenshot(c *echo.Context) error {
	rec, ok := s.lookup(c)
	if !ok {
		return writeNotFound(c)
	}
	shot := rec.Save.SaveGameHeader.Screenshot
	if shot.Width == 0 || shot.Height == 0 {
		return writeError(c, http.StatusNotFound, "not_found_error", "save has no screenshot")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, shot.Image()); err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "image/png")
	res.Header().Set("Cache-Control", "private, max-age=3600")
	res.WriteHeader(http.StatusOK)
	_, err := res.Write(buf.Bytes())
	return err
}
