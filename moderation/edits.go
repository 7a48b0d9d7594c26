package moderation

import (
	"fmt"
	"time"
)

// EditSnapshot is one historical version of an editable content item, as the
// upstream store returns it: ordered by creation time ascending, index 0
// being the version left behind by the first edit. CategoryID is set only on
// snapshots recorded by a forum category move.
type EditSnapshot struct {
	Author       UserHeader `json:"author"`
	Text         string     `json:"text"`
	CategoryID   *string    `json:"categoryID,omitempty"`
	CreationTime time.Time  `json:"createdAt"`
}

// AnnotatedEdit is an EditSnapshot ready for audit display: the author is
// the person whose edit produced this version, with a label describing the
// transition.
type AnnotatedEdit struct {
	EditSnapshot
	Label string
}

// TitleLookup resolves a forum category ID to its display title. A false
// return degrades to a placeholder in the annotation, never an error.
type TitleLookup func(categoryID string) (string, bool)

// AnnotateEdits rewrites the stored authorship for display. The store keeps
// authorship one position behind where a reader expects it: the author field
// on snapshot i actually belongs to the edit that replaced snapshot i-1. The
// walk runs in reverse, pulling each author forward from index i-1 to i, and
// then pins the creator at index 0. The final stored author (the person who
// made the item's current, un-snapshotted version) drops out of the history
// entirely; they are shown with the live content instead.
//
// The bounds matter: the destination index never reaches 0 inside the loop,
// and the source is always i-1. Shifting from i instead would duplicate one
// author and drop another.
func AnnotateEdits(edits []EditSnapshot, creator UserHeader, titles TitleLookup) []AnnotatedEdit {
	annotated := make([]AnnotatedEdit, len(edits))
	for i := len(edits) - 1; i >= 1; i-- {
		prev := edits[i-1]
		annotated[i].EditSnapshot = edits[i]
		annotated[i].Author = prev.Author
		if prev.CategoryID != nil {
			title := "unknown category"
			if titles != nil {
				if t, ok := titles(*prev.CategoryID); ok {
					title = t
				}
			}
			annotated[i].Label = fmt.Sprintf("%s changed the category from %q", prev.Author.Username, title)
		} else {
			annotated[i].Label = fmt.Sprintf("%s edited to:", prev.Author.Username)
		}
	}
	if len(edits) > 0 {
		annotated[0].EditSnapshot = edits[0]
		annotated[0].Author = creator
		annotated[0].Label = fmt.Sprintf("%s initially wrote:", creator.Username)
	}
	return annotated
}
