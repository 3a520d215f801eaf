package api

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/david/support-finder/internal/auth"
	"github.com/david/support-finder/internal/catalog"
	"github.com/david/support-finder/internal/db"
	"github.com/david/support-finder/internal/discovery"
	"github.com/david/support-finder/internal/filter"
	"github.com/david/support-finder/internal/locale"
	"github.com/david/support-finder/internal/logger"
)

type Server struct {
	Catalog *catalog.Catalog
	Tokens  *auth.TokenIssuer
	Store   *db.Store // nil when snapshots are disabled
	Echo    *echo.Echo

	log         *zap.Logger
	adminSecret string
}

type Options struct {
	CORSOrigins []string
	AdminSecret string
	Store       *db.Store
}

func NewServer(cat *catalog.Catalog, tokens *auth.TokenIssuer, log *zap.Logger, opts Options) (*Server, error) {
	log = logger.OrNop(log)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = jsonErrorHandler(log)
	e.Use(middleware.Recover())
	e.Use(requestLogger(log))

	allowedOrigins := opts.CORSOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:4200"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Accept-Language", "X-Admin-Secret"},
	}))

	secret := strings.TrimSpace(opts.AdminSecret)
	if secret == "" && opts.Store != nil {
		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate admin fallback secret: %w", err)
		}
		secret = base64.RawURLEncoding.EncodeToString(buf)
		log.Warn("admin secret is not set; using ephemeral in-memory fallback secret")
	}

	s := &Server{
		Catalog:     cat,
		Tokens:      tokens,
		Store:       opts.Store,
		Echo:        e,
		log:         log,
		adminSecret: secret,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	s.Echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.Echo.Group("/api/v1")
	api.GET("/domains", s.handleListDomains)
	api.GET("/domains/:domain/entities", s.handleListEntities)
	api.GET("/domains/:domain/entities/:id", s.handleGetEntity)
	api.GET("/domains/:domain/facets", s.handleFacets)
	api.GET("/text/:namespace", s.handleText)

	quiz := api.Group("/domains/:domain/quiz")
	quiz.Use(auth.Middleware(s.Tokens))
	quiz.POST("", s.handleQuizStart)
	quiz.POST("/answer", s.handleQuizAnswer)
	quiz.POST("/skip", s.handleQuizSkip)
	quiz.POST("/close", s.handleQuizClose)
	quiz.POST("/reset", s.handleQuizReset)

	if s.Store != nil {
		admin := api.Group("/admin")
		admin.Use(s.adminMiddleware)
		admin.GET("/snapshots", s.handleListSnapshots)
		admin.POST("/snapshots", s.handleWriteSnapshots)
	}
}

func (s *Server) Start(addr string) error {
	return s.Echo.Start(addr)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleListDomains(c echo.Context) error {
	lang := requestLanguage(c)
	domains := s.Catalog.Domains()
	out := make([]domainView, 0, len(domains))
	for _, d := range domains {
		out = append(out, domainView{
			ID:             d.ID,
			Title:          d.Resolve(d.Title, lang),
			GermanLearning: d.GermanLearning,
			Entities:       len(d.Entities),
			Questions:      len(d.Questions),
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleListEntities(c echo.Context) error {
	d, err := s.domain(c)
	if err != nil {
		return err
	}
	lang := requestLanguage(c)

	session := discovery.NewSession(d, s.log)
	state := filter.FromValues(c.QueryParams())
	for _, dim := range state.Active() {
		session.SetFilter(dim, state.Get(dim))
	}

	results := session.ResultsFor(c.QueryParam("q"), lang)
	views := make([]entityView, 0, len(results))
	for _, e := range results {
		views = append(views, renderEntity(d, e, lang))
	}
	return c.JSON(http.StatusOK, listResponse{
		Entities: views,
		Total:    len(views),
		Filters:  session.Filters(),
		Lang:     lang,
	})
}

func (s *Server) handleGetEntity(c echo.Context) error {
	d, err := s.domain(c)
	if err != nil {
		return err
	}
	e, ok := d.Entity(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	return c.JSON(http.StatusOK, renderEntity(d, e, requestLanguage(c)))
}

func (s *Server) handleFacets(c echo.Context) error {
	d, err := s.domain(c)
	if err != nil {
		return err
	}
	session := discovery.NewSession(d, s.log)
	state := filter.FromValues(c.QueryParams())
	for _, dim := range state.Active() {
		session.SetFilter(dim, state.Get(dim))
	}
	return c.JSON(http.StatusOK, session.Facets())
}

func (s *Server) handleText(c echo.Context) error {
	ns := c.Param("namespace")
	keys := splitCSV(strings.Join(c.QueryParams()["key"], ","))
	if len(keys) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "key is required")
	}
	lang := requestLanguage(c)

	texts := make(map[string]string, len(keys))
	for _, k := range keys {
		texts[k] = s.Catalog.Text(ns, k, lang)
	}
	return c.JSON(http.StatusOK, textResponse{Namespace: ns, Lang: lang, Texts: texts})
}

// domain resolves the :domain path parameter.
func (s *Server) domain(c echo.Context) (*discovery.Domain, error) {
	d, err := s.Catalog.Domain(c.Param("domain"))
	if errors.Is(err, catalog.ErrUnknownDomain) {
		return nil, echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return d, err
}

// requestLanguage picks ?lang=, then the first Accept-Language tag.
func requestLanguage(c echo.Context) string {
	if l := c.QueryParam("lang"); l != "" {
		return locale.NormalizeLanguage(l)
	}
	header := c.Request().Header.Get("Accept-Language")
	if first, _, _ := strings.Cut(header, ","); first != "" {
		tag, _, _ := strings.Cut(first, ";")
		return locale.NormalizeLanguage(tag)
	}
	return locale.DefaultLanguage
}

// splitCSV splits a comma-separated query parameter into trimmed non-empty strings.
func splitCSV(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
