package main

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shipboard-social/quarterdeck/apiv3"
	"github.com/shipboard-social/quarterdeck/moderation"
)

const sessionName = "quarterdeck"

// sessionUser is the logged-in moderator as cached in the cookie session.
// The token is the upstream store's bearer token; every forwarded call
// carries it, so the store remains the authority on whether it is still
// valid.
type sessionUser struct {
	Token       string
	User        moderation.UserHeader
	AccessLevel moderation.AccessLevel
}

func (srv *Server) sessionUser(c echo.Context) *sessionUser {
	sess, _ := srv.cookies.Get(c.Request(), sessionName)
	token, ok := sess.Values["token"].(string)
	if !ok || token == "" {
		return nil
	}
	levelName, _ := sess.Values["accessLevel"].(string)
	level, err := moderation.ParseAccessLevel(levelName)
	if err != nil {
		return nil
	}
	userID, _ := sess.Values["userID"].(string)
	username, _ := sess.Values["username"].(string)
	return &sessionUser{
		Token:       token,
		User:        moderation.UserHeader{UserID: userID, Username: username},
		AccessLevel: level,
	}
}

func (srv *Server) saveSession(c echo.Context, auth *apiv3.AuthResult) error {
	sess, _ := srv.cookies.Get(c.Request(), sessionName)
	sess.Values["token"] = auth.Token
	sess.Values["accessLevel"] = auth.AccessLevel.String()
	sess.Values["userID"] = auth.User.UserID
	sess.Values["username"] = auth.User.Username
	return sess.Save(c.Request(), c.Response())
}

func (srv *Server) clearSession(c echo.Context) error {
	sess, _ := srv.cookies.Get(c.Request(), sessionName)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// requireModerator gates the moderation pages. Anonymous visitors go to the
// login form; an authenticated non-moderator gets a 403. The store enforces
// the same gate on every forwarded call regardless.
func (srv *Server) requireModerator(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u := srv.sessionUser(c)
		if u == nil {
			return c.Redirect(http.StatusFound, "/login")
		}
		if !u.AccessLevel.HasAccess(moderation.AccessModerator) {
			return echo.NewHTTPError(http.StatusForbidden, "moderator access required")
		}
		c.Set("modUser", u)
		return next(c)
	}
}

func currentUser(c echo.Context) *sessionUser {
	u, _ := c.Get("modUser").(*sessionUser)
	return u
}

// apiFor returns a store client authenticated as the given moderator,
// sharing the server's HTTP clients.
func (srv *Server) apiFor(u *sessionUser) *apiv3.Client {
	client := *srv.api
	client.Auth = &apiv3.AuthInfo{Token: u.Token}
	return &client
}
