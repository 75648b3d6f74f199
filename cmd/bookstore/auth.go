package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/MikeMC777/bookstore/internal/httpx"
	"github.com/MikeMC777/bookstore/internal/session"
	"github.com/MikeMC777/bookstore/internal/user"
)

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

// fieldErrors turns validation failures into one line per field.
func fieldErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out = append(out, fmt.Sprintf("%s is required.", fe.Field()))
		case "email":
			out = append(out, fmt.Sprintf("%s must be a valid email address.", fe.Field()))
		case "eqfield":
			out = append(out, "The two password fields didn't match.")
		case "min":
			out = append(out, fmt.Sprintf("%s must be at least %s characters.", fe.Field(), fe.Param()))
		case "max":
			out = append(out, fmt.Sprintf("%s must be at most %s characters.", fe.Field(), fe.Param()))
		case "iso3166_1_alpha2":
			out = append(out, "Country must be a two letter ISO code.")
		case "numeric":
			out = append(out, fmt.Sprintf("%s must contain digits only.", fe.Field()))
		default:
			out = append(out, fmt.Sprintf("%s is invalid.", fe.Field()))
		}
	}
	return out
}

func signinFormHandler(p *pages) gin.HandlerFunc {
	return func(c *gin.Context) {
		if httpx.Session(c).IsAuthenticated() {
			c.Redirect(http.StatusFound, safeNext(c.Query("next")))
			return
		}
		p.render(c, http.StatusOK, "accounts/signin.html", "Sign in", gin.H{"Next": c.Query("next")})
	}
}

func signinHandler(p *pages, users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		login := c.PostForm("username")
		next := c.PostForm("next")

		u, err := users.Authenticate(c.Request.Context(), login, c.PostForm("password"))
		if errors.Is(err, user.ErrInvalidCredentials) {
			p.render(c, http.StatusOK, "accounts/signin.html", "Sign in", gin.H{
				"Error": "Please enter a correct username and password.",
				"Login": login,
				"Next":  next,
			})
			return
		}
		if err != nil {
			fail(c, err, "authenticate")
			return
		}

		httpx.Login(c, u.ID)
		httpx.Session(c).AddMessage(session.LevelSuccess, "Welcome back, "+u.DisplayName()+"!")
		logger(c).Info().Str("user_id", u.ID).Msg("signed in")
		c.Redirect(http.StatusFound, safeNext(next))
	}
}

func signupFormHandler(p *pages) gin.HandlerFunc {
	return func(c *gin.Context) {
		p.render(c, http.StatusOK, "accounts/signup.html", "Sign up", gin.H{"Form": user.SignUp{}})
	}
}

func signupHandler(p *pages, users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in user.SignUp
		if err := c.ShouldBind(&in); err != nil {
			p.render(c, http.StatusBadRequest, "accounts/signup.html", "Sign up", gin.H{
				"Form": in, "Errors": []string{"Invalid form submission."},
			})
			return
		}

		u, err := users.Register(c.Request.Context(), in)
		if err != nil {
			var verrs validator.ValidationErrors
			switch {
			case errors.As(err, &verrs):
				p.render(c, http.StatusOK, "accounts/signup.html", "Sign up", gin.H{"Form": in, "Errors": fieldErrors(err)})
			case errors.Is(err, user.ErrAlreadyExist):
				p.render(c, http.StatusOK, "accounts/signup.html", "Sign up", gin.H{
					"Form": in, "Errors": []string{"A user with that username or email already exists."},
				})
			default:
				fail(c, err, "register")
			}
			return
		}

		httpx.Login(c, u.ID)
		httpx.Session(c).AddMessage(session.LevelSuccess, "Your account was created.")
		logger(c).Info().Str("user_id", u.ID).Msg("signed up")
		c.Redirect(http.StatusFound, "/")
	}
}

func signoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpx.Logout(c)
		httpx.Session(c).AddMessage(session.LevelInfo, "You have been signed out.")
		c.Redirect(http.StatusFound, "/")
	}
}
