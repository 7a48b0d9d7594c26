package moderation

import (
	"encoding/json"
	"fmt"
)

// ModerationState is a per-content-item override, orthogonal to the author's
// access level. Locked blocks author edits/deletes; quarantined hides the
// item from ordinary viewers. Moderators can see and edit regardless.
type ModerationState int

const (
	StateNormal ModerationState = iota
	StateLocked
	StateQuarantined
)

var moderationStateNames = map[ModerationState]string{
	StateNormal:      "normal",
	StateLocked:      "locked",
	StateQuarantined: "quarantined",
}

func (s ModerationState) String() string {
	if name, ok := moderationStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

func ParseModerationState(s string) (ModerationState, error) {
	for state, name := range moderationStateNames {
		if s == name {
			return state, nil
		}
	}
	return StateNormal, fmt.Errorf("unknown moderation state: %q", s)
}

func (s ModerationState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ModerationState) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	parsed, err := ParseModerationState(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// QuarantineThresholds are the report counts at which the upstream store
// auto-quarantines content. They are policy values carried through config to
// the store; the counting and the transition both happen upstream.
type QuarantineThresholds struct {
	Twarrt    int `json:"twarrtQuarantineCount"`
	ForumPost int `json:"forumPostQuarantineCount"`
	User      int `json:"userQuarantineCount"`
}
