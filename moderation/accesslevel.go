package moderation

import (
	"encoding/json"
	"fmt"
)

// AccessLevel is a user's privilege tier, as a closed set of ordered values.
// The upstream store serializes these as lowercase strings; the numeric
// ordering here is what makes HasAccess a simple comparison.
type AccessLevel int

const (
	AccessBanned AccessLevel = iota
	AccessUnverified
	AccessVerified
	AccessModerator
	AccessTwitarrTeam
	AccessTHO
	AccessAdmin
)

var accessLevelNames = map[AccessLevel]string{
	AccessBanned:      "banned",
	AccessUnverified:  "unverified",
	AccessVerified:    "verified",
	AccessModerator:   "moderator",
	AccessTwitarrTeam: "twitarrteam",
	AccessTHO:         "tho",
	AccessAdmin:       "admin",
}

func (lvl AccessLevel) String() string {
	if s, ok := accessLevelNames[lvl]; ok {
		return s
	}
	return fmt.Sprintf("unknown(%d)", int(lvl))
}

func ParseAccessLevel(s string) (AccessLevel, error) {
	for lvl, name := range accessLevelNames {
		if s == name {
			return lvl, nil
		}
	}
	return AccessBanned, fmt.Errorf("unknown access level: %q", s)
}

func (lvl AccessLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(lvl.String())
}

func (lvl *AccessLevel) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseAccessLevel(s)
	if err != nil {
		return err
	}
	*lvl = parsed
	return nil
}

// HasAccess indicates whether someone at this level is allowed to do things
// gated at the required level. Reflexive and monotonic over the ordering.
func (lvl AccessLevel) HasAccess(required AccessLevel) bool {
	return lvl >= required
}

// legal promotions, keyed by target level: the level a user must currently
// hold, and the minimum level of the caller performing the promotion. All
// promotions originate at verified; there is no rung-to-rung climb.
var promotions = map[AccessLevel]struct {
	from      AccessLevel
	actorGate AccessLevel
}{
	AccessModerator:   {from: AccessVerified, actorGate: AccessTHO},
	AccessTwitarrTeam: {from: AccessVerified, actorGate: AccessTHO},
	AccessTHO:         {from: AccessVerified, actorGate: AccessAdmin},
}

// Promote validates a promotion request against the transition matrix.
// Promotion is intentionally fan-out: a THO can mint moderators or
// twitarrteam members from the verified pool, and only the admin can mint
// THO. Any pair outside that matrix is an InvalidTransitionError, and an
// under-privileged caller gets ErrForbidden even for a legal pair.
func Promote(actor, current, target AccessLevel) error {
	rule, ok := promotions[target]
	if !ok || rule.from != current {
		return &InvalidTransitionError{From: current, To: target}
	}
	if !actor.HasAccess(rule.actorGate) {
		return fmt.Errorf("promoting to %s requires %s: %w", target, rule.actorGate, ErrForbidden)
	}
	return nil
}

// Demote returns the level a privileged user lands on when stripped of
// their role. Demotion is intentionally fan-in: moderator, twitarrteam,
// and tho all drop straight to verified, never to an intermediate rung.
// The asymmetry with Promote is a deliberate property of the hierarchy.
func Demote(actor, current AccessLevel) (AccessLevel, error) {
	switch current {
	case AccessModerator, AccessTwitarrTeam:
		if !actor.HasAccess(AccessTHO) {
			return current, fmt.Errorf("demoting a %s requires tho: %w", current, ErrForbidden)
		}
	case AccessTHO:
		if !actor.HasAccess(AccessAdmin) {
			return current, fmt.Errorf("demoting tho requires admin: %w", ErrForbidden)
		}
	default:
		return current, &InvalidTransitionError{From: current, To: AccessVerified}
	}
	return AccessVerified, nil
}
