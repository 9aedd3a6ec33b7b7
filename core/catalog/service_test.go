package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laurahq/lms/core"
	"github.com/laurahq/lms/core/catalog"
	"github.com/laurahq/lms/core/user"
	testutil "github.com/laurahq/lms/tests"
)

func TestNewLesson_Validate_homeworkPairing(t *testing.T) {
	validate, _ := core.NewValidators()
	task := "write an essay"

	tests := []struct {
		name    string
		lesson  catalog.NewLesson
		wantErr bool
	}{
		{
			name:   "no homework, no task",
			lesson: catalog.NewLesson{Title: "L", Slug: "l"},
		},
		{
			name:   "homework with task",
			lesson: catalog.NewLesson{Title: "L", Slug: "l", HasHomework: true, HomeworkTask: &task},
		},
		{
			name:    "homework without task",
			lesson:  catalog.NewLesson{Title: "L", Slug: "l", HasHomework: true},
			wantErr: true,
		},
		{
			name:    "task without homework",
			lesson:  catalog.NewLesson{Title: "L", Slug: "l", HomeworkTask: &task},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.lesson.Validate(validate)
			if tt.wantErr {
				assert.True(t, core.IsValidationError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewCourse_Validate_slugUniqueness(t *testing.T) {
	svcs := testutil.NewServices(t)
	validate, _ := core.NewValidators()
	svcs.CreateCourse(t, "taken")

	nc := catalog.NewCourse{Title: "Another", Slug: "taken"}
	err := nc.Validate(validate, svcs.Catalog)
	assert.True(t, core.IsValidationError(err))

	nc = catalog.NewCourse{Title: "Another", Slug: "free"}
	assert.NoError(t, nc.Validate(validate, svcs.Catalog))

	// malformed slugs are rejected before hitting the repository
	nc = catalog.NewCourse{Title: "Another", Slug: "Not A Slug!"}
	assert.Error(t, nc.Validate(validate, svcs.Catalog))
}

func TestService_AddModule_sortOrder(t *testing.T) {
	svcs := testutil.NewServices(t)
	crs, _ := svcs.CreateCourse(t, "sorting")

	// default sort order appends
	m2, err := svcs.Catalog.AddModule(crs.ID, catalog.NewModule{Title: "M2"})
	require.NoError(t, err)
	assert.Equal(t, 2, m2.SortOrder)

	// explicit free slot is honored
	m5, err := svcs.Catalog.AddModule(crs.ID, catalog.NewModule{Title: "M5", SortOrder: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, m5.SortOrder)

	// duplicate slot is rejected
	_, err = svcs.Catalog.AddModule(crs.ID, catalog.NewModule{Title: "Mx", SortOrder: 2})
	assert.True(t, core.IsValidationError(err))
}

func TestService_AddLesson_refreshesCourseTotals(t *testing.T) {
	svcs := testutil.NewServices(t)
	crs, _ := svcs.CreateCourse(t, "totals",
		testutil.VideoLesson("l1", 90),  // 1.5 min
		testutil.VideoLesson("l2", 125), // rounds the total up
	)

	assert.Equal(t, 2, crs.TotalLessons)
	assert.Equal(t, 4, crs.EstimatedDurationMin) // ceil(215s / 60)

	mods, err := svcs.Catalog.ModulesOf(crs.ID)
	require.NoError(t, err)
	_, err = svcs.Catalog.AddLesson(mods[0].ID, testutil.VideoLesson("l3", 60))
	require.NoError(t, err)

	crs, err = svcs.Catalog.CourseByID(crs.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, crs.TotalLessons)
	assert.Equal(t, 5, crs.EstimatedDurationMin)
}

func TestService_LessonsOfCourse_canonicalOrder(t *testing.T) {
	svcs := testutil.NewServices(t)
	author := svcs.CreateUser(t, "Author", "author@test.cd", user.RoleAdmin)
	crs, err := svcs.Catalog.CreateCourse(author.ID, catalog.NewCourse{
		Title:  "Ordered",
		Slug:   "ordered",
		Status: catalog.StatusPublished,
	})
	require.NoError(t, err)

	// created out of order on purpose
	m2, err := svcs.Catalog.AddModule(crs.ID, catalog.NewModule{Title: "M2", SortOrder: 2})
	require.NoError(t, err)
	m1, err := svcs.Catalog.AddModule(crs.ID, catalog.NewModule{Title: "M1", SortOrder: 1})
	require.NoError(t, err)

	l21, err := svcs.Catalog.AddLesson(m2.ID, testutil.VideoLesson("l21", 60))
	require.NoError(t, err)
	l12, err := svcs.Catalog.AddLesson(m1.ID, catalog.NewLesson{Title: "L12", Slug: "l12", SortOrder: 2})
	require.NoError(t, err)
	l11, err := svcs.Catalog.AddLesson(m1.ID, catalog.NewLesson{Title: "L11", Slug: "l11", SortOrder: 1})
	require.NoError(t, err)

	lsns, err := svcs.Catalog.LessonsOfCourse(crs.ID)
	require.NoError(t, err)
	require.Len(t, lsns, 3)
	assert.Equal(t, l11.ID, lsns[0].ID)
	assert.Equal(t, l12.ID, lsns[1].ID)
	assert.Equal(t, l21.ID, lsns[2].ID)
}

func TestService_PublishedCourses(t *testing.T) {
	svcs := testutil.NewServices(t)
	author := svcs.CreateUser(t, "Author", "author@test.cd", user.RoleAdmin)

	published, err := svcs.Catalog.CreateCourse(author.ID, catalog.NewCourse{
		Title:  "Live",
		Slug:   "live",
		Status: catalog.StatusPublished,
	})
	require.NoError(t, err)
	_, err = svcs.Catalog.CreateCourse(author.ID, catalog.NewCourse{
		Title:  "WIP",
		Slug:   "wip",
		Status: catalog.StatusDraft,
	})
	require.NoError(t, err)

	courses, err := svcs.Catalog.PublishedCourses()
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, published.ID, courses[0].ID)

	all, err := svcs.Catalog.AllCourses()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
