package moderation

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"
)

// Report is one user complaint against one content item or profile, as
// stored upstream. Exactly one (Type, ReportedID) pair per report; many
// reports may share a pair.
type Report struct {
	ID            string      `json:"id"`
	Type          ContentType `json:"type"`
	ReportedID    string      `json:"reportedID"`
	ReportedUser  UserHeader  `json:"reportedUser"`
	ReportingUser UserHeader  `json:"reportingUser"`
	ReasonText    string      `json:"reasonText"`
	CreationTime  time.Time   `json:"creationTime"`
	IsClosed      bool        `json:"isClosed"`
	HandledBy     *UserHeader `json:"handledBy,omitempty"`
}

// ContentGroup aggregates every report against one content item. Derived on
// each page load from the current report list; never persisted.
type ContentGroup struct {
	Type           ContentType
	ContentID      string
	ReportedUser   UserHeader
	EarliestReport Report
	OpenCount      int
	HandledBy      *UserHeader
	ContentURL     string
	Reports        []Report
	// Version is a content hash over the group's report states, usable as
	// an If-Match precondition so a second "handle" of the same group can
	// be rejected as stale instead of silently racing.
	Version string
}

type groupKey struct {
	t  ContentType
	id string
}

// GroupReports folds a flat report list into per-content groups. Single map
// pass; input order does not matter. Per group: OpenCount counts reports not
// yet closed, EarliestReport is the minimum creation time, and HandledBy is
// the last non-nil handler seen (moderators may reassign handling). Groups
// come back sorted open-first, then by earliest report time.
func GroupReports(reports []Report) []ContentGroup {
	byKey := make(map[groupKey]*ContentGroup, len(reports))
	order := make([]groupKey, 0, len(reports))

	for _, r := range reports {
		k := groupKey{t: r.Type, id: r.ReportedID}
		g, ok := byKey[k]
		if !ok {
			g = &ContentGroup{
				Type:           r.Type,
				ContentID:      r.ReportedID,
				ReportedUser:   r.ReportedUser,
				EarliestReport: r,
				ContentURL:     r.Type.ContentURL(r.ReportedID),
			}
			byKey[k] = g
			order = append(order, k)
		}
		if r.CreationTime.Before(g.EarliestReport.CreationTime) {
			g.EarliestReport = r
		}
		if !r.IsClosed {
			g.OpenCount++
		}
		if r.HandledBy != nil {
			g.HandledBy = r.HandledBy
		}
		g.Reports = append(g.Reports, r)
	}

	groups := make([]ContentGroup, 0, len(byKey))
	for _, k := range order {
		g := byKey[k]
		g.Version = groupVersion(g.Reports)
		groups = append(groups, *g)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		iOpen, jOpen := groups[i].OpenCount > 0, groups[j].OpenCount > 0
		if iOpen != jOpen {
			return iOpen
		}
		return groups[i].EarliestReport.CreationTime.Before(groups[j].EarliestReport.CreationTime)
	})
	return groups
}

// groupVersion hashes the fields a concurrent "handle" or "close" would
// change. Order-insensitive over the report set.
func groupVersion(reports []Report) string {
	lines := make([]string, 0, len(reports))
	for _, r := range reports {
		line := r.ID
		if r.IsClosed {
			line += "/closed"
		} else {
			line += "/open"
		}
		if r.HandledBy != nil {
			line += "/" + r.HandledBy.UserID
		}
		lines = append(lines, line)
	}
	sort.Strings(lines)
	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// GroupFilter selects groups after grouping. A group with any open report
// counts as open, even if most of its reports are closed.
type GroupFilter int

const (
	FilterAll GroupFilter = iota
	FilterOpenOnly
	FilterClosedOnly
)

func FilterGroups(groups []ContentGroup, filter GroupFilter) []ContentGroup {
	if filter == FilterAll {
		return groups
	}
	out := make([]ContentGroup, 0, len(groups))
	for _, g := range groups {
		open := g.OpenCount > 0
		if (filter == FilterOpenOnly && open) || (filter == FilterClosedOnly && !open) {
			out = append(out, g)
		}
	}
	return out
}
