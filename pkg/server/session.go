package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikogura/learning-designer/pkg/session"
)

// loadSession reads the session named by the request cookie.
func (s *Server) loadSession(c *gin.Context) (sess session.Session, err error) {
	id, cookieErr := c.Cookie(CookieName)
	if cookieErr != nil || !session.ValidID(id) {
		err = errNoSession
		return sess, err
	}

	sess, err = s.store.Get(c.Request.Context(), id)
	return sess, err
}

// saveSession persists the session and refreshes the cookie.
func (s *Server) saveSession(c *gin.Context, sess *session.Session) (err error) {
	err = s.store.Save(c.Request.Context(), sess)
	if err != nil {
		return err
	}

	s.setCookie(c, sess.ID, s.cfg.Sessions.TTLMinutes*60)
	return err
}

// discardSession deletes the session and expires the cookie.
func (s *Server) discardSession(c *gin.Context, id string) {
	err := s.store.Delete(c.Request.Context(), id)
	if err != nil {
		s.logger.Warn("failed to discard session", "error", err.Error())
	}
	s.setCookie(c, "", -1)
}

func (s *Server) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, value, maxAge, "/", "", s.cfg.Server.CookieSecure, true)
}
