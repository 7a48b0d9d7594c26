package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/flosch/pongo2/v6"
	"github.com/labstack/echo/v4"

	"github.com/shipboard-social/quarterdeck/apiv3"
	"github.com/shipboard-social/quarterdeck/moderation"
)

func (srv *Server) WebHome(c echo.Context) error {
	data := pongo2.Context{
		"user": srv.sessionUser(c),
	}
	pageRenderCount.WithLabelValues("home").Inc()
	return c.Render(http.StatusOK, "home.html", data)
}

func (srv *Server) WebLogin(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", pongo2.Context{})
}

func (srv *Server) WebLoginPost(c echo.Context) error {
	ctx := c.Request().Context()
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return c.Render(http.StatusBadRequest, "login.html", pongo2.Context{
			"loginError": "username and password required",
		})
	}

	auth, err := srv.api.Login(ctx, username, password)
	if err != nil {
		slog.Warn("login failed", "username", username, "err", err)
		return c.Render(http.StatusUnauthorized, "login.html", pongo2.Context{
			"loginError": "login failed",
		})
	}
	if !auth.AccessLevel.HasAccess(moderation.AccessModerator) {
		return c.Render(http.StatusForbidden, "login.html", pongo2.Context{
			"loginError": "this console is for moderators",
		})
	}
	if err := srv.saveSession(c, auth); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/reports")
}

func (srv *Server) WebLogout(c echo.Context) error {
	if err := srv.clearSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// WebReports renders the grouped report queue. Grouping and filtering happen
// here on every load; the store only hands over the flat list.
func (srv *Server) WebReports(c echo.Context) error {
	ctx := c.Request().Context()
	u := currentUser(c)

	reports, err := srv.apiFor(u).GetReports(ctx)
	if err != nil {
		return err
	}
	reportsGroupedCount.Add(float64(len(reports)))

	filter := moderation.FilterOpenOnly
	filterName := c.QueryParam("filter")
	switch filterName {
	case "closed":
		filter = moderation.FilterClosedOnly
	case "all":
		filter = moderation.FilterAll
	default:
		filterName = "open"
	}
	groups := moderation.FilterGroups(moderation.GroupReports(reports), filter)

	pageRenderCount.WithLabelValues("reports").Inc()
	return c.Render(http.StatusOK, "reports.html", pongo2.Context{
		"user":   u,
		"groups": groups,
		"filter": filterName,
	})
}

func (srv *Server) WebReportsHandleAll(c echo.Context) error {
	return srv.forwardGroupAction(c, "handleall", srv.apiFor(currentUser(c)).HandleAllReports)
}

func (srv *Server) WebReportsCloseAll(c echo.Context) error {
	return srv.forwardGroupAction(c, "closeall", srv.apiFor(currentUser(c)).CloseAllReports)
}

// forwardGroupAction forwards a handle/close for a whole report group. The
// form carries the group version the page was rendered from; it rides along
// as an If-Match so a store that checks it can reject a stale claim. Errors
// surface the store's status verbatim.
func (srv *Server) forwardGroupAction(c echo.Context, action string, call func(context.Context, string, string) error) error {
	ctx := c.Request().Context()
	reportID := c.Param("id")
	version := c.FormValue("version")

	if err := call(ctx, reportID, version); err != nil {
		modActionCount.WithLabelValues(action, "error").Inc()
		return err
	}
	modActionCount.WithLabelValues(action, "ok").Inc()
	return c.Redirect(http.StatusSeeOther, "/reports")
}

// contentInfo is the slice of the store's polymorphic content payload the
// console needs: the live author (the edit history's creator) and the
// current text.
type contentInfo struct {
	Author moderation.UserHeader `json:"author"`
	Text   string                `json:"text"`
}

func (srv *Server) WebModerateContent(c echo.Context) error {
	ctx := c.Request().Context()
	u := currentUser(c)

	contentType, err := moderation.ParseContentType(c.Param("type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown content type")
	}
	contentID := c.Param("id")

	api := srv.apiFor(u)
	view, err := api.GetModerationView(ctx, contentType, contentID)
	if err != nil {
		return err
	}

	var content contentInfo
	if len(view.Content) > 0 {
		// best effort; an undecodable payload still renders the audit page
		if err := json.Unmarshal(view.Content, &content); err != nil {
			slog.Warn("undecodable content payload", "type", contentType, "id", contentID, "err", err)
		}
	}

	annotated := moderation.AnnotateEdits(view.Edits, content.Author, srv.categoryTitles(ctx, api))
	groups := moderation.GroupReports(view.Reports)

	pageRenderCount.WithLabelValues("moderate").Inc()
	return c.Render(http.StatusOK, "moderate.html", pongo2.Context{
		"user":        u,
		"contentType": contentType.String(),
		"contentID":   contentID,
		"content":     content,
		"state":       view.State.String(),
		"states":      []string{"normal", "locked", "quarantined"},
		"edits":       annotated,
		"groups":      groups,
	})
}

func (srv *Server) WebSetModerationState(c echo.Context) error {
	ctx := c.Request().Context()
	u := currentUser(c)

	contentType, err := moderation.ParseContentType(c.Param("type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown content type")
	}
	state, err := moderation.ParseModerationState(c.Param("state"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown moderation state")
	}
	contentID := c.Param("id")

	if err := srv.apiFor(u).SetModerationState(ctx, contentType, contentID, state); err != nil {
		modActionCount.WithLabelValues("setstate", "error").Inc()
		return err
	}
	modActionCount.WithLabelValues("setstate", "ok").Inc()
	slog.Info("moderation state set", "type", contentType, "id", contentID, "state", state, "by", u.User.Username)
	return c.Redirect(http.StatusSeeOther, contentType.ContentURL(contentID))
}

// profileInfo is the slice of a user profile payload the mod page shows.
type profileInfo struct {
	Header      moderation.UserHeader  `json:"header"`
	AccessLevel moderation.AccessLevel `json:"accessLevel"`
}

func (srv *Server) WebModerateUser(c echo.Context) error {
	ctx := c.Request().Context()
	u := currentUser(c)
	userID := c.Param("userid")

	view, err := srv.apiFor(u).GetModerationView(ctx, moderation.TypeUserProfile, userID)
	if err != nil {
		return err
	}

	var profile profileInfo
	if len(view.Content) > 0 {
		if err := json.Unmarshal(view.Content, &profile); err != nil {
			slog.Warn("undecodable profile payload", "userID", userID, "err", err)
		}
	}

	pageRenderCount.WithLabelValues("user").Inc()
	return c.Render(http.StatusOK, "user.html", pongo2.Context{
		"user":    u,
		"profile": profile,
		"level":   profile.AccessLevel.String(),
		"state":   view.State.String(),
		"groups":  moderation.GroupReports(view.Reports),
		"edits":   moderation.AnnotateEdits(view.Edits, profile.Header, nil),
	})
}

// WebSetAccessLevel checks the promotion/demotion matrix locally before
// forwarding. The form carries the target's current level as rendered; the
// store validates again with authoritative data.
func (srv *Server) WebSetAccessLevel(c echo.Context) error {
	ctx := c.Request().Context()
	u := currentUser(c)
	userID := c.Param("userid")

	target, err := moderation.ParseAccessLevel(c.Param("level"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown access level")
	}
	current, err := moderation.ParseAccessLevel(c.FormValue("current"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown current access level")
	}

	if target == moderation.AccessVerified {
		if _, err := moderation.Demote(u.AccessLevel, current); err != nil {
			modActionCount.WithLabelValues("setaccesslevel", "rejected").Inc()
			return err
		}
	} else {
		if err := moderation.Promote(u.AccessLevel, current, target); err != nil {
			modActionCount.WithLabelValues("setaccesslevel", "rejected").Inc()
			return err
		}
	}

	if err := srv.apiFor(u).SetAccessLevel(ctx, userID, target); err != nil {
		modActionCount.WithLabelValues("setaccesslevel", "error").Inc()
		return err
	}
	modActionCount.WithLabelValues("setaccesslevel", "ok").Inc()
	slog.Info("access level set", "userID", userID, "level", target, "by", u.User.Username)
	return c.Redirect(http.StatusSeeOther, "/user/"+userID)
}

func (srv *Server) WebTempQuarantine(c echo.Context) error {
	ctx := c.Request().Context()
	u := currentUser(c)
	userID := c.Param("userid")

	seconds, err := strconv.Atoi(c.Param("seconds"))
	if err != nil || seconds < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "quarantine length must be a non-negative integer")
	}

	if err := srv.apiFor(u).TempQuarantine(ctx, userID, seconds); err != nil {
		modActionCount.WithLabelValues("tempquarantine", "error").Inc()
		return err
	}
	modActionCount.WithLabelValues("tempquarantine", "ok").Inc()
	slog.Info("temp quarantine", "userID", userID, "seconds", seconds, "by", u.User.Username)
	return c.Redirect(http.StatusSeeOther, "/user/"+userID)
}

// categoryTitles adapts the title cache into the annotator's lookup. On a
// cache miss it refreshes once from the store's category list; a failed
// refresh just means the annotation uses its placeholder.
func (srv *Server) categoryTitles(ctx context.Context, api *apiv3.Client) moderation.TitleLookup {
	refreshed := false
	return func(categoryID string) (string, bool) {
		title, err := srv.titles.Get(ctx, categoryID)
		if err != nil {
			slog.Warn("title cache read failed", "categoryID", categoryID, "err", err)
			return "", false
		}
		if title != "" {
			return title, true
		}
		if refreshed {
			return "", false
		}
		refreshed = true
		cats, err := api.GetForumCategories(ctx)
		if err != nil {
			slog.Warn("category list refresh failed", "err", err)
			return "", false
		}
		for _, cat := range cats {
			if err := srv.titles.Set(ctx, cat.CategoryID, cat.Title); err != nil {
				slog.Warn("title cache write failed", "categoryID", cat.CategoryID, "err", err)
			}
			if cat.CategoryID == categoryID {
				title = cat.Title
			}
		}
		return title, title != ""
	}
}
