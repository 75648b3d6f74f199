package httpx

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/MikeMC777/bookstore/internal/session"
)

const sessionKey = "session"

type sessionState struct {
	sess   *session.Session
	secret string
	maxAge int
	secure bool
	// fresh is set when the request carried no usable session cookie.
	fresh  bool
	issued bool
}

func (st *sessionState) setCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, session.Sign(st.sess.ID, st.secret), st.maxAge, "/", "", st.secure, true)
	st.issued = true
}

// issueIfSaved hands out the cookie of a fresh session only once the session
// has something worth saving. A request that lost its cookie on the way in
// (a cross-site POST under SameSite=Lax) must not overwrite the browser's.
func (st *sessionState) issueIfSaved(c *gin.Context) {
	if st.fresh && !st.issued && st.sess.Modified() {
		st.setCookie(c)
	}
}

// cookieWriter issues a pending session cookie right before the headers go
// out.
type cookieWriter struct {
	gin.ResponseWriter
	c  *gin.Context
	st *sessionState
}

func (w *cookieWriter) WriteHeaderNow() {
	if !w.Written() {
		w.st.issueIfSaved(w.c)
	}
	w.ResponseWriter.WriteHeaderNow()
}

func (w *cookieWriter) Write(b []byte) (int, error) {
	w.WriteHeaderNow()
	return w.ResponseWriter.Write(b)
}

func (w *cookieWriter) WriteString(s string) (int, error) {
	w.WriteHeaderNow()
	return w.ResponseWriter.WriteString(s)
}

// Sessions loads the session named by the signed cookie, or starts a new
// one, and saves it after the handler if anything changed. A new session
// gets its cookie only when it is saved.
func Sessions(store *session.Store, secret string, secure bool) gin.HandlerFunc {
	maxAge := int(store.TTL().Seconds())
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var sess *session.Session
		if v, err := c.Cookie(session.CookieName); err == nil {
			if id, ok := session.Verify(v, secret); ok {
				s, err := store.Load(ctx, id)
				switch {
				case err == nil:
					sess = s
				case errors.Is(err, session.ErrNotFound):
					sess = &session.Session{ID: id}
				default:
					zerolog.Ctx(ctx).Error().Err(err).Msg("load session")
				}
			}
		}
		st := &sessionState{sess: sess, secret: secret, maxAge: maxAge, secure: secure}
		if sess == nil {
			st.sess = session.New()
			st.fresh = true
		}
		c.Set(sessionKey, st)
		if !st.fresh {
			st.setCookie(c)
		}

		w := c.Writer
		c.Writer = &cookieWriter{ResponseWriter: w, c: c, st: st}
		c.Next()
		c.Writer = w

		if !w.Written() {
			st.issueIfSaved(c)
		}
		if sess := st.sess; sess.Modified() {
			if err := store.Save(ctx, sess); err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Msg("save session")
			}
		}
	}
}

// Session returns the request's session. Outside the Sessions middleware it
// returns a throwaway one.
func Session(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionKey); ok {
		return v.(*sessionState).sess
	}
	s := session.New()
	c.Set(sessionKey, &sessionState{sess: s})
	return s
}

// HasSessionCookie reports whether the request came with a valid session
// cookie. Without one, anything written to the session starts a new one
// for this browser.
func HasSessionCookie(c *gin.Context) bool {
	if v, ok := c.Get(sessionKey); ok {
		return !v.(*sessionState).fresh
	}
	return false
}

// Login binds userID to the session under a fresh id.
func Login(c *gin.Context, userID string) {
	st := state(c)
	st.sess.Login(userID)
	if st.secret != "" {
		st.setCookie(c)
	}
}

// Logout flushes the session, cart included.
func Logout(c *gin.Context) {
	st := state(c)
	st.sess.Flush()
	if st.secret != "" {
		st.setCookie(c)
	}
}

func state(c *gin.Context) *sessionState {
	Session(c)
	v, _ := c.Get(sessionKey)
	return v.(*sessionState)
}

// RequireAuth sends anonymous visitors to signinPath with ?next= set. AJAX
// callers get a 401 instead.
func RequireAuth(signinPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if Session(c).IsAuthenticated() {
			c.Next()
			return
		}
		if IsAJAX(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authentication required"})
			return
		}
		c.Redirect(http.StatusFound, signinPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}
