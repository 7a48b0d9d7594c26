package apiv3

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/shipboard-social/quarterdeck/moderation"
)

// ModerationView is the store's audit payload for one content item.
type ModerationView struct {
	Content json.RawMessage            `json:"content"`
	State   moderation.ModerationState `json:"moderationState"`
	Edits   []moderation.EditSnapshot  `json:"edits"`
	Reports []moderation.Report        `json:"reports"`
}

// CategoryData is one forum category as the store lists it.
type CategoryData struct {
	CategoryID string `json:"categoryID"`
	Title      string `json:"title"`
}

// AuthResult is the store's response to a successful login.
type AuthResult struct {
	Token       string                 `json:"token"`
	AccessLevel moderation.AccessLevel `json:"accessLevel"`
	User        moderation.UserHeader  `json:"user"`
}

// GetReports fetches the full flat report list. Grouping happens locally.
func (c *Client) GetReports(ctx context.Context) ([]moderation.Report, error) {
	var reports []moderation.Report
	if err := c.Do(ctx, Query, "/reports", nil, nil, nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// HandleAllReports marks every report in the identified report's group as
// handled by the caller. A non-empty ifMatch is sent as an If-Match
// precondition carrying the group version; stores that support it reject a
// stale claim with 412.
func (c *Client) HandleAllReports(ctx context.Context, reportID, ifMatch string) error {
	return c.Do(ctx, Procedure, fmt.Sprintf("/reports/%s/handleAll", url.PathEscape(reportID)), nil, ifMatchHeader(ifMatch), nil, nil)
}

// CloseAllReports closes every report in the identified report's group.
func (c *Client) CloseAllReports(ctx context.Context, reportID, ifMatch string) error {
	return c.Do(ctx, Procedure, fmt.Sprintf("/reports/%s/closeAll", url.PathEscape(reportID)), nil, ifMatchHeader(ifMatch), nil, nil)
}

func ifMatchHeader(ifMatch string) map[string]string {
	if ifMatch == "" {
		return nil
	}
	return map[string]string{"If-Match": fmt.Sprintf("%q", ifMatch)}
}

// GetModerationView fetches the content, edit history, and reports for one
// item.
func (c *Client) GetModerationView(ctx context.Context, t moderation.ContentType, contentID string) (*ModerationView, error) {
	var view ModerationView
	path := fmt.Sprintf("/moderation/%s/%s", t, url.PathEscape(contentID))
	if err := c.Do(ctx, Query, path, nil, nil, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// SetModerationState applies a per-item override. Moderator-gated upstream;
// unconditional and idempotent.
func (c *Client) SetModerationState(ctx context.Context, t moderation.ContentType, contentID string, state moderation.ModerationState) error {
	path := fmt.Sprintf("/moderation/%s/%s/setState/%s", t, url.PathEscape(contentID), state)
	return c.Do(ctx, Procedure, path, nil, nil, nil, nil)
}

// SetAccessLevel forwards a validated access level change. The transition
// matrix is checked by the caller before this; the store checks again.
func (c *Client) SetAccessLevel(ctx context.Context, userID string, level moderation.AccessLevel) error {
	path := fmt.Sprintf("/access/%s/setLevel/%s", url.PathEscape(userID), level)
	return c.Do(ctx, Procedure, path, nil, nil, nil, nil)
}

// TempQuarantine applies a time-boxed quarantine override to a user, or
// clears one when lengthSeconds is 0. Expiry timing is the store's job; this
// only issues the call.
func (c *Client) TempQuarantine(ctx context.Context, userID string, lengthSeconds int) error {
	path := fmt.Sprintf("/access/%s/tempQuarantine/%d", url.PathEscape(userID), lengthSeconds)
	return c.Do(ctx, Procedure, path, nil, nil, nil, nil)
}

// GetForumCategories lists the store's forum categories, for category-move
// title display.
func (c *Client) GetForumCategories(ctx context.Context) ([]CategoryData, error) {
	var cats []CategoryData
	if err := c.Do(ctx, Query, "/forum/categories", nil, nil, nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// Login exchanges credentials for a store token. Basic auth over the wire,
// like every other Twitarr client.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	basic := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	headers := map[string]string{"Authorization": "Basic " + basic}
	var result AuthResult
	if err := c.Do(ctx, Procedure, "/auth/login", nil, headers, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetQuarantineThresholds pushes auto-quarantine policy values to the store.
// The store does the counting and the transitions; these numbers just ride
// through from config.
func (c *Client) SetQuarantineThresholds(ctx context.Context, thresholds moderation.QuarantineThresholds) error {
	return c.Do(ctx, Procedure, "/admin/quarantine/thresholds", nil, nil, thresholds, nil)
}
