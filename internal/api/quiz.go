package api

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/david/support-finder/internal/auth"
	"github.com/david/support-finder/internal/discovery"
	"github.com/david/support-finder/internal/metrics"
	"github.com/david/support-finder/internal/quiz"
)

// quizRequest is the body of every quiz call. The token may also be sent as
// a Bearer header.
type quizRequest struct {
	Token   string            `json:"token"`
	Value   string            `json:"value"`
	Choice  *int              `json:"choice"`
	Filters map[string]string `json:"filters"`
}

func (s *Server) handleQuizStart(c echo.Context) error {
	d, err := s.domain(c)
	if err != nil {
		return err
	}
	var req quizRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	session := discovery.NewSession(d, s.log, s.onComplete(d))
	for dim, value := range req.Filters {
		session.SetFilter(dim, value)
	}

	id := auth.NewSessionID()
	metrics.QuizTransitions.WithLabelValues(d.ID, "start").Inc()
	s.log.Info("quiz started", zap.String("domain", d.ID), zap.String("session", id))
	return s.respondQuiz(c, http.StatusCreated, id, session)
}

func (s *Server) handleQuizAnswer(c echo.Context) error {
	return s.quizStep(c, "answer", func(session *discovery.Session, req quizRequest) error {
		if req.Choice != nil {
			return session.Quiz().Choose(*req.Choice)
		}
		value := strings.TrimSpace(req.Value)
		if q, ok := session.Quiz().Current(); ok && value != "" {
			if !slices.Contains(q.Keys(), value) {
				return fmt.Errorf("%w: %q is not an answer to %s", quiz.ErrInvalidAnswer, value, q.TargetDimension)
			}
		}
		return session.Quiz().Answer(value)
	})
}

func (s *Server) handleQuizSkip(c echo.Context) error {
	return s.quizStep(c, "skip", func(session *discovery.Session, _ quizRequest) error {
		return session.Quiz().Skip()
	})
}

func (s *Server) handleQuizClose(c echo.Context) error {
	return s.quizStep(c, "close", func(session *discovery.Session, _ quizRequest) error {
		session.Quiz().Close()
		return nil
	})
}

func (s *Server) handleQuizReset(c echo.Context) error {
	return s.quizStep(c, "reset", func(session *discovery.Session, _ quizRequest) error {
		session.Quiz().Reset()
		return nil
	})
}

// quizStep resumes the session carried by the token, applies step and
// answers with a fresh token for the same session id.
func (s *Server) quizStep(c echo.Context, transition string, step func(*discovery.Session, quizRequest) error) error {
	d, err := s.domain(c)
	if err != nil {
		return err
	}
	var req quizRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	claims, err := s.quizClaims(c, req.Token)
	if err != nil {
		return err
	}
	if claims.Domain != d.ID {
		return echo.NewHTTPError(http.StatusUnauthorized, "Token belongs to another domain")
	}

	session, err := discovery.Resume(d, s.log, claims.Filters, claims.Quiz, s.onComplete(d))
	if err != nil {
		s.log.Warn("rejecting quiz state", zap.String("domain", d.ID), zap.Error(err))
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid quiz state")
	}

	if err := step(session, req); err != nil {
		switch {
		case errors.Is(err, quiz.ErrCompleted):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, quiz.ErrInvalidAnswer):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return err
		}
	}

	metrics.QuizTransitions.WithLabelValues(d.ID, transition).Inc()
	return s.respondQuiz(c, http.StatusOK, claims.SessionID(), session)
}

// quizClaims prefers claims parsed by auth.Middleware and falls back to the
// token in the body.
func (s *Server) quizClaims(c echo.Context, bodyToken string) (*auth.Claims, error) {
	if claims, ok := auth.ClaimsFromContext(c); ok {
		return claims, nil
	}
	if strings.TrimSpace(bodyToken) == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Quiz token is required")
	}
	claims, err := s.Tokens.Parse(bodyToken)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
	}
	return claims, nil
}

func (s *Server) onComplete(d *discovery.Domain) quiz.Option {
	return quiz.WithOnComplete(func(st quiz.State) {
		metrics.QuizTransitions.WithLabelValues(d.ID, "complete").Inc()
		s.log.Info("quiz completed",
			zap.String("domain", d.ID),
			zap.Int("answers", len(st.Answers)),
		)
	})
}

func (s *Server) respondQuiz(c echo.Context, code int, sessionID string, session *discovery.Session) error {
	lang := requestLanguage(c)
	d := session.Domain()
	qc := session.Quiz()
	state := qc.Snapshot()
	filters := session.Filters()

	token, err := s.Tokens.Issue(sessionID, d.ID, state, filters)
	if err != nil {
		return fmt.Errorf("issue quiz token: %w", err)
	}

	resp := quizResponse{
		Token:   token,
		State:   state,
		Filters: filters,
		Total:   len(session.Results()),
	}
	if q, ok := qc.Current(); ok {
		resp.Question = renderQuestion(d, qc.CurrentIndex(), q, lang)
	}
	resp.Progress.Answered, resp.Progress.Total = qc.Progress()
	return c.JSON(code, resp)
}
