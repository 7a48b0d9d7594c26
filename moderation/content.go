package moderation

import (
	"encoding/json"
	"fmt"
)

// ContentType identifies which kind of item a report or moderation action
// refers to. Content IDs are opaque strings whose shape depends on the type
// (numeric for twarrts, UUIDs for most everything else), so they stay
// strings here.
type ContentType int

const (
	TypeTwarrt ContentType = iota
	TypeForumPost
	TypeForum
	TypeGroup
	TypeGroupPost
	TypeUserProfile
)

var contentTypeNames = map[ContentType]string{
	TypeTwarrt:      "twarrt",
	TypeForumPost:   "forumPost",
	TypeForum:       "forum",
	TypeGroup:       "group",
	TypeGroupPost:   "groupPost",
	TypeUserProfile: "userProfile",
}

func (t ContentType) String() string {
	if s, ok := contentTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("unknown(%d)", int(t))
}

func ParseContentType(s string) (ContentType, error) {
	for t, name := range contentTypeNames {
		if s == name {
			return t, nil
		}
	}
	return TypeTwarrt, fmt.Errorf("unknown content type: %q", s)
}

func (t ContentType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ContentType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseContentType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ContentURL returns the console page for moderating one item of this type.
// The switch is exhaustive over the closed set so that adding a type without
// a URL is caught here rather than producing dead links.
func (t ContentType) ContentURL(contentID string) string {
	switch t {
	case TypeTwarrt:
		return fmt.Sprintf("/moderate/twarrt/%s", contentID)
	case TypeForumPost:
		return fmt.Sprintf("/moderate/forumPost/%s", contentID)
	case TypeForum:
		return fmt.Sprintf("/moderate/forum/%s", contentID)
	case TypeGroup:
		return fmt.Sprintf("/moderate/group/%s", contentID)
	case TypeGroupPost:
		return fmt.Sprintf("/moderate/groupPost/%s", contentID)
	case TypeUserProfile:
		return fmt.Sprintf("/user/%s", contentID)
	default:
		return "/reports"
	}
}

// UserHeader is the compact identity reference the upstream user store hands
// out. Owned upstream; never mutated here.
type UserHeader struct {
	UserID      string `json:"userID"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
}
