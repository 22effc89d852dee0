package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GGyongfeng/HuiXueJiaoPei/internal/domain"
)

func TestComposer_ManagerDefaultGating(t *testing.T) {
	t.Parallel()

	sql, args := NewComposer(ViewManager).WithDefaultGating(false).ListSQL()

	assert.Contains(t, sql, "t.is_deleted = $1")
	assert.Contains(t, sql, "ORDER BY t.id DESC")
	assert.Equal(t, []any{false, 20, 0}, args)
}

func TestComposer_TeacherGatingIsForced(t *testing.T) {
	t.Parallel()

	// The restricted view ignores the deletion flag entirely.
	sql, args := NewComposer(ViewTeacher).WithDefaultGating(true).ListSQL()

	assert.Contains(t, sql, "t.is_deleted = FALSE")
	assert.Contains(t, sql, "t.is_visible = TRUE")
	assert.Contains(t, sql, "t.status = $1")
	assert.Equal(t, []any{string(domain.StatusUnfulfilled), 20, 0}, args)
}

func TestComposer_FieldFilterEqualityAndMembership(t *testing.T) {
	t.Parallel()

	single, singleArgs := NewComposer(ViewManager).
		WithFieldFilter("student_gender", "Female").
		CountSQL()
	assert.Contains(t, single, "t.student_gender = $1")
	assert.Equal(t, []any{"Female"}, singleArgs)

	multi, multiArgs := NewComposer(ViewManager).
		WithFieldFilter("district", "Nankai District", "Heping District").
		CountSQL()
	assert.Contains(t, multi, "t.district = ANY($1)")
	assert.Equal(t, []any{[]string{"Nankai District", "Heping District"}}, multiArgs)
}

func TestComposer_UnknownOrEmptyFieldIsSkipped(t *testing.T) {
	t.Parallel()

	base := NewComposer(ViewManager)

	same := base.
		WithFieldFilter("not_a_field", "x").
		WithFieldFilter("district").
		WithFieldFilter("district", "", " ").
		WithKeyword("").
		WithCity("").
		WithTagsFilter()

	baseSQL, baseArgs := base.CountSQL()
	sameSQL, sameArgs := same.CountSQL()
	assert.Equal(t, baseSQL, sameSQL)
	assert.Equal(t, baseArgs, sameArgs)
}

func TestComposer_SetFieldsMatchAnyOf(t *testing.T) {
	t.Parallel()

	sql, args := NewComposer(ViewManager).
		WithFieldFilter("subjects", "Mathematics", "English").
		WithTagsFilter("urgent").
		CountSQL()

	assert.Contains(t, sql, "t.subjects && $1")
	assert.Contains(t, sql, "t.order_tags && $2")
	assert.Equal(t, []any{[]string{"Mathematics", "English"}, []string{"urgent"}}, args)
}

func TestComposer_KeywordPerView(t *testing.T) {
	t.Parallel()

	manager, managerArgs := NewComposer(ViewManager).WithKeyword("math").CountSQL()
	assert.Contains(t, manager, "t.tutor_code ILIKE $1")
	assert.Contains(t, manager, "t.requirement_desc ILIKE $2")
	assert.Equal(t, []any{"%math%", "%math%"}, managerArgs)

	teacher, teacherArgs := NewComposer(ViewTeacher).WithKeyword("math").CountSQL()
	assert.NotContains(t, teacher, "tutor_code ILIKE")
	assert.Contains(t, teacher, "t.requirement_desc ILIKE $1")
	assert.Equal(t, []any{"%math%"}, teacherArgs)
}

func TestComposer_VisibilityValuesTranslate(t *testing.T) {
	t.Parallel()

	sql, args := NewComposer(ViewManager).
		WithFieldFilter("is_visible", "Yes").
		CountSQL()

	assert.Contains(t, sql, "t.is_visible = $1")
	assert.Equal(t, []any{true}, args)
}

func TestComposer_PaginationClamping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		page, size int
		wantLimit  int
		wantOffset int
	}{
		{"zero values clamp to one", 0, 0, 1, 0},
		{"negative values clamp to one", -3, -10, 1, 0},
		{"page three of twenty", 3, 20, 20, 40},
		{"first page", 1, 50, 50, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, args := NewComposer(ViewManager).Paginate(tc.page, tc.size).ListSQL()
			require.Len(t, args, 2)
			assert.Equal(t, tc.wantLimit, args[0])
			assert.Equal(t, tc.wantOffset, args[1])
		})
	}
}

func TestComposer_CountSharesPredicatesWithoutPagination(t *testing.T) {
	t.Parallel()

	c := NewComposer(ViewManager).
		WithDefaultGating(false).
		WithFieldFilter("status", string(domain.StatusUnfulfilled)).
		WithFieldFilter("subjects", "Physics").
		WithKeyword("tutor").
		WithCity("Tianjin").
		Paginate(3, 20)

	listSQL, listArgs := c.ListSQL()
	countSQL, countArgs := c.CountSQL()

	// Count carries the identical predicate args, minus limit and offset.
	require.Len(t, listArgs, len(countArgs)+2)
	assert.Equal(t, countArgs, listArgs[:len(countArgs)])

	assert.NotContains(t, countSQL, "ORDER BY")
	assert.NotContains(t, countSQL, "LIMIT")
	assert.True(t, strings.HasPrefix(countSQL, "SELECT COUNT(*)"))

	// The WHERE text is shared verbatim before placeholder renumbering makes
	// no difference here: both start numbering at $1 over the same clauses.
	wherePart := func(sql string) string {
		idx := strings.Index(sql, "WHERE")
		require.GreaterOrEqual(t, idx, 0)
		out := sql[idx:]
		if cut := strings.Index(out, "ORDER BY"); cut >= 0 {
			out = out[:cut]
		}
		return strings.TrimSpace(out)
	}
	assert.Equal(t, wherePart(countSQL), wherePart(listSQL))
}

func TestComposer_BranchingDoesNotMutateParent(t *testing.T) {
	t.Parallel()

	base := NewComposer(ViewManager).WithDefaultGating(false)
	baseSQL, baseArgs := base.CountSQL()

	left := base.WithFieldFilter("district", "Nankai District")
	right := base.WithKeyword("piano")

	gotSQL, gotArgs := base.CountSQL()
	assert.Equal(t, baseSQL, gotSQL)
	assert.Equal(t, baseArgs, gotArgs)

	leftSQL, _ := left.CountSQL()
	rightSQL, _ := right.CountSQL()
	assert.Contains(t, leftSQL, "t.district")
	assert.NotContains(t, leftSQL, "ILIKE")
	assert.Contains(t, rightSQL, "ILIKE")
	assert.NotContains(t, rightSQL, "t.district")
}

func TestNumberPlaceholders(t *testing.T) {
	t.Parallel()

	got := numberPlaceholders("a = ? AND b = ANY(?) OR (c ILIKE ? AND d = ?)")
	assert.Equal(t, "a = $1 AND b = ANY($2) OR (c ILIKE $3 AND d = $4)", got)
}

func TestComposeListing_AppliesCatalogOrder(t *testing.T) {
	t.Parallel()

	q := domain.ListQuery{
		Filters: map[string][]string{
			"status":         {string(domain.StatusFulfilled)},
			"student_gender": {"Male"},
		},
		Tags:     []string{"urgent"},
		Keyword:  "violin",
		City:     "Tianjin",
		Page:     2,
		PageSize: 10,
	}

	sql, args := composeListing(ViewManager, q).ListSQL()

	// student_gender precedes status in the catalog, so its clause and arg
	// come first regardless of map iteration order.
	genderIdx := strings.Index(sql, "t.student_gender")
	statusIdx := strings.Index(sql, "t.status")
	require.Greater(t, genderIdx, 0)
	require.Greater(t, statusIdx, 0)
	assert.Less(t, genderIdx, statusIdx)

	assert.Equal(t, []any{
		false,
		"Male",
		string(domain.StatusFulfilled),
		[]string{"urgent"},
		"%violin%", "%violin%",
		"Tianjin",
		10, 10,
	}, args)
}
