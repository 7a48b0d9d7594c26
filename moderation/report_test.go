package moderation

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tstamp(sec int) time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(sec) * time.Second)
}

func TestGroupReportsBasics(t *testing.T) {
	assert := assert.New(t)

	reports := []Report{
		{ID: "r1", Type: TypeTwarrt, ReportedID: "t1", IsClosed: false, CreationTime: tstamp(10)},
		{ID: "r2", Type: TypeTwarrt, ReportedID: "t1", IsClosed: true, CreationTime: tstamp(5)},
		{ID: "r3", Type: TypeForum, ReportedID: "t2", IsClosed: false, CreationTime: tstamp(20)},
	}

	groups := GroupReports(reports)
	require.Len(t, groups, 2)

	byID := map[string]ContentGroup{}
	for _, g := range groups {
		byID[g.ContentID] = g
	}

	t1 := byID["t1"]
	assert.Equal(TypeTwarrt, t1.Type)
	assert.Equal(1, t1.OpenCount)
	assert.Equal(tstamp(5), t1.EarliestReport.CreationTime)
	assert.Equal("r2", t1.EarliestReport.ID)
	assert.Len(t1.Reports, 2)

	t2 := byID["t2"]
	assert.Equal(1, t2.OpenCount)
	assert.Equal(tstamp(20), t2.EarliestReport.CreationTime)
	assert.Len(t2.Reports, 1)
}

func TestGroupReportsPartition(t *testing.T) {
	assert := assert.New(t)

	var reports []Report
	for i := 0; i < 50; i++ {
		reports = append(reports, Report{
			ID:           fmt.Sprintf("r%d", i),
			Type:         ContentType(i % 3),
			ReportedID:   fmt.Sprintf("c%d", i%7),
			IsClosed:     i%2 == 0,
			CreationTime: tstamp(i * 3 % 17),
		})
	}

	groups := GroupReports(reports)

	seen := map[string]int{}
	total := 0
	for _, g := range groups {
		openCount := 0
		for _, r := range g.Reports {
			assert.Equal(g.Type, r.Type)
			assert.Equal(g.ContentID, r.ReportedID)
			assert.False(r.CreationTime.Before(g.EarliestReport.CreationTime))
			seen[r.ID]++
			total++
			if !r.IsClosed {
				openCount++
			}
		}
		assert.Equal(openCount, g.OpenCount)
	}
	// every report lands in exactly one group
	assert.Equal(len(reports), total)
	for _, r := range reports {
		assert.Equal(1, seen[r.ID])
	}
}

func TestGroupReportsOrderIndependent(t *testing.T) {
	assert := assert.New(t)

	mod := &UserHeader{UserID: "mod-1", Username: "kvothe"}
	reports := []Report{
		{ID: "a", Type: TypeForumPost, ReportedID: "p9", CreationTime: tstamp(30)},
		{ID: "b", Type: TypeForumPost, ReportedID: "p9", CreationTime: tstamp(7), IsClosed: true, HandledBy: mod},
		{ID: "c", Type: TypeForumPost, ReportedID: "p9", CreationTime: tstamp(99)},
	}

	expected := GroupReports(reports)
	require.Len(t, expected, 1)
	assert.Equal("b", expected[0].EarliestReport.ID)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]Report, len(reports))
		copy(shuffled, reports)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		groups := GroupReports(shuffled)
		require.Len(t, groups, 1)
		assert.Equal("b", groups[0].EarliestReport.ID)
		assert.Equal(2, groups[0].OpenCount)
		assert.Equal(expected[0].Version, groups[0].Version)
		require.NotNil(t, groups[0].HandledBy)
		assert.Equal("mod-1", groups[0].HandledBy.UserID)
	}
}

func TestGroupReportsSortOpenFirst(t *testing.T) {
	assert := assert.New(t)

	reports := []Report{
		{ID: "x", Type: TypeTwarrt, ReportedID: "closed-early", IsClosed: true, CreationTime: tstamp(1)},
		{ID: "y", Type: TypeTwarrt, ReportedID: "open-late", IsClosed: false, CreationTime: tstamp(50)},
		{ID: "z", Type: TypeTwarrt, ReportedID: "open-early", IsClosed: false, CreationTime: tstamp(10)},
	}

	groups := GroupReports(reports)
	assert.Equal([]string{"open-early", "open-late", "closed-early"}, []string{
		groups[0].ContentID, groups[1].ContentID, groups[2].ContentID,
	})
}

func TestGroupVersionTracksHandling(t *testing.T) {
	assert := assert.New(t)

	reports := []Report{
		{ID: "r1", Type: TypeTwarrt, ReportedID: "t1", CreationTime: tstamp(1)},
		{ID: "r2", Type: TypeTwarrt, ReportedID: "t1", CreationTime: tstamp(2)},
	}
	before := GroupReports(reports)[0].Version

	reports[1].HandledBy = &UserHeader{UserID: "mod-1", Username: "kvothe"}
	afterHandle := GroupReports(reports)[0].Version
	assert.NotEqual(before, afterHandle)

	reports[1].IsClosed = true
	afterClose := GroupReports(reports)[0].Version
	assert.NotEqual(afterHandle, afterClose)
}

func TestFilterGroups(t *testing.T) {
	assert := assert.New(t)

	reports := []Report{
		{ID: "r1", Type: TypeTwarrt, ReportedID: "mixed", IsClosed: true, CreationTime: tstamp(1)},
		{ID: "r2", Type: TypeTwarrt, ReportedID: "mixed", IsClosed: false, CreationTime: tstamp(2)},
		{ID: "r3", Type: TypeForum, ReportedID: "done", IsClosed: true, CreationTime: tstamp(3)},
	}
	groups := GroupReports(reports)

	assert.Len(FilterGroups(groups, FilterAll), 2)

	open := FilterGroups(groups, FilterOpenOnly)
	// a group with any open report is open, even with closed reports in it
	if assert.Len(open, 1) {
		assert.Equal("mixed", open[0].ContentID)
	}

	closed := FilterGroups(groups, FilterClosedOnly)
	if assert.Len(closed, 1) {
		assert.Equal("done", closed[0].ContentID)
	}
}

func TestContentURLAllTypes(t *testing.T) {
	assert := assert.New(t)

	for tp := range contentTypeNames {
		url := tp.ContentURL("abc")
		assert.NotEqual("/reports", url, "type %s has no content URL", tp)
		assert.Contains(url, "abc")
	}
}
