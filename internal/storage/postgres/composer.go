package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GGyongfeng/HuiXueJiaoPei/internal/domain"
	"github.com/GGyongfeng/HuiXueJiaoPei/internal/logger"
)

// View selects the column set and default gating of a listing query.
type View int

const (
	// ViewManager selects every order column plus joined staff/teacher names.
	ViewManager View = iota
	// ViewTeacher selects the narrow column set shown to teachers and is
	// always gated to visible, unfulfilled, non-deleted orders.
	ViewTeacher
)

const managerSelect = `
SELECT t.id, t.tutor_code, t.status, t.is_visible, t.is_deleted,
       t.student_gender, t.teaching_type, t.student_grade, t.student_level, t.grade_score,
       t.subjects, t.teacher_type, t.teacher_gender, t.order_tags,
       t.district, t.city, t.address,
       t.tutoring_time, t.salary, t.requirement_desc,
       t.created_by, t.updated_by, t.deleted_by,
       t.created_at, t.updated_at, t.deleted_at,
       t.deal_teacher_id, t.deal_staff_id, t.deal_time,
       c.username AS created_by_name,
       u.username AS updated_by_name,
       d.username AS deleted_by_name,
       dt.name AS deal_teacher_name,
       ds.username AS deal_staff_name
FROM tutor_orders t
LEFT JOIN staff c ON t.created_by = c.id
LEFT JOIN staff u ON t.updated_by = u.id
LEFT JOIN staff d ON t.deleted_by = d.id
LEFT JOIN teachers dt ON t.deal_teacher_id = dt.id
LEFT JOIN staff ds ON t.deal_staff_id = ds.id`

const teacherSelect = `
SELECT t.id, t.tutor_code,
       t.student_gender, t.teaching_type, t.student_grade, t.student_level, t.grade_score,
       t.subjects, t.teacher_type, t.teacher_gender, t.order_tags,
       t.district, t.city, t.address,
       t.tutoring_time, t.salary, t.requirement_desc
FROM tutor_orders t`

// Composer accumulates predicate clauses and their parameters for one order
// listing. It has value semantics: every With* step returns a new Composer
// and never mutates its receiver, so a partially built composer can be
// branched safely. The count query is derived from the same clause set as
// the list query, which keeps the two from drifting apart.
//
// Clauses use `?` placeholders; they are renumbered to $n when the final SQL
// is assembled.
type Composer struct {
	view     View
	conds    []string
	args     []any
	page     int
	pageSize int
}

// NewComposer returns an empty composer for the given view with default
// pagination (page 1, 20 rows).
func NewComposer(view View) Composer {
	return Composer{view: view, page: 1, pageSize: 20}
}

func (c Composer) with(cond string, args ...any) Composer {
	conds := make([]string, len(c.conds), len(c.conds)+1)
	copy(conds, c.conds)
	c.conds = append(conds, cond)

	if len(args) > 0 {
		next := make([]any, len(c.args), len(c.args)+len(args))
		copy(next, c.args)
		c.args = append(next, args...)
	}
	return c
}

// WithDefaultGating applies the view's baseline visibility rules. The manager
// view filters on the deletion flag as requested; the teacher view is pinned
// to live, visible, unfulfilled orders regardless of input.
func (c Composer) WithDefaultGating(includeDeleted bool) Composer {
	if c.view == ViewTeacher {
		return c.
			with(`t.is_deleted = FALSE`).
			with(`t.is_visible = TRUE`).
			with(`t.status = ?`, string(domain.StatusUnfulfilled))
	}
	return c.with(`t.is_deleted = ?`, includeDeleted)
}

// WithFieldFilter appends a predicate for one catalog field. Unknown fields
// and empty value lists are skipped: an absent filter is not an error, it was
// simply not requested. Set-valued fields match any-of; scalar fields match
// equality (one value) or membership (several).
func (c Composer) WithFieldFilter(field string, values ...string) Composer {
	values = dropEmpty(values)
	if len(values) == 0 || !domain.IsFilterField(field) {
		return c
	}
	if domain.IsSetValuedField(field) {
		return c.with(fmt.Sprintf(`t.%s && ?`, field), values)
	}
	if field == "is_visible" {
		return c.withVisibility(values)
	}
	if len(values) == 1 {
		return c.with(fmt.Sprintf(`t.%s = ?`, field), values[0])
	}
	return c.with(fmt.Sprintf(`t.%s = ANY(?)`, field), values)
}

// WithTagsFilter matches orders carrying any of the requested tags.
func (c Composer) WithTagsFilter(tags ...string) Composer {
	tags = dropEmpty(tags)
	if len(tags) == 0 {
		return c
	}
	return c.with(`t.order_tags && ?`, tags)
}

// WithKeyword appends a case-insensitive substring search. The manager view
// searches the order code and the requirement text; the teacher view only
// the requirement text.
func (c Composer) WithKeyword(keyword string) Composer {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return c
	}
	pattern := "%" + keyword + "%"
	if c.view == ViewTeacher {
		return c.with(`t.requirement_desc ILIKE ?`, pattern)
	}
	return c.with(`(t.tutor_code ILIKE ? OR t.requirement_desc ILIKE ?)`, pattern, pattern)
}

// WithCity appends a city equality predicate; empty input is a no-op.
func (c Composer) WithCity(city string) Composer {
	if city == "" {
		return c
	}
	return c.with(`t.city = ?`, city)
}

// Paginate sets page and page size, clamping both to at least 1.
func (c Composer) Paginate(page, pageSize int) Composer {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	c.page = page
	c.pageSize = pageSize
	return c
}

func (c Composer) withVisibility(values []string) Composer {
	flags := make([]bool, 0, len(values))
	for _, v := range values {
		switch v {
		case "Yes", "true":
			flags = append(flags, true)
		case "No", "false":
			flags = append(flags, false)
		}
	}
	if len(flags) == 0 {
		return c
	}
	if len(flags) == 1 {
		return c.with(`t.is_visible = ?`, flags[0])
	}
	return c.with(`t.is_visible = ANY(?)`, flags)
}

func (c Composer) whereClause() string {
	if len(c.conds) == 0 {
		return ""
	}
	return "\nWHERE " + strings.Join(c.conds, "\n  AND ")
}

// ListSQL assembles the paginated list query. Ordering is always by id
// descending so pagination stays stable under concurrent inserts.
func (c Composer) ListSQL() (string, []any) {
	sql := c.selectClause() + c.whereClause() + "\nORDER BY t.id DESC\nLIMIT ? OFFSET ?"
	args := make([]any, 0, len(c.args)+2)
	args = append(args, c.args...)
	args = append(args, c.pageSize, (c.page-1)*c.pageSize)
	return numberPlaceholders(sql), args
}

// CountSQL assembles the companion count query over the identical predicate
// set, without joins, ordering, or pagination.
func (c Composer) CountSQL() (string, []any) {
	sql := `SELECT COUNT(*) FROM tutor_orders t` + c.whereClause()
	args := make([]any, len(c.args))
	copy(args, c.args)
	return numberPlaceholders(sql), args
}

func (c Composer) selectClause() string {
	if c.view == ViewTeacher {
		return teacherSelect
	}
	return managerSelect
}

// Execute runs the list and count queries concurrently. Either failing fails
// the pair; the offending statement and parameters are logged, never
// returned to the caller.
func (c Composer) Execute(ctx context.Context, pool *pgxpool.Pool) (domain.ListResult, error) {
	listSQL, listArgs := c.ListSQL()
	countSQL, countArgs := c.CountSQL()

	var (
		orders []domain.Order
		total  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := pool.Query(gctx, listSQL, listArgs...)
		if err != nil {
			return queryFailure("list orders", listSQL, listArgs, err)
		}
		defer rows.Close()

		for rows.Next() {
			order, err := c.scanRow(rows)
			if err != nil {
				return fmt.Errorf("scan order: %w", err)
			}
			orders = append(orders, order)
		}
		if rows.Err() != nil {
			return queryFailure("iterate orders", listSQL, listArgs, rows.Err())
		}
		return nil
	})
	g.Go(func() error {
		if err := pool.QueryRow(gctx, countSQL, countArgs...).Scan(&total); err != nil {
			return queryFailure("count orders", countSQL, countArgs, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.ListResult{}, err
	}
	return domain.ListResult{Orders: orders, Total: total}, nil
}

func (c Composer) scanRow(rows pgx.Rows) (domain.Order, error) {
	var o domain.Order
	if c.view == ViewTeacher {
		err := rows.Scan(
			&o.ID, &o.Code,
			&o.StudentGender, &o.TeachingType, &o.StudentGrade, &o.StudentLevel, &o.GradeScore,
			&o.Subjects, &o.TeacherType, &o.TeacherGender, &o.OrderTags,
			&o.District, &o.City, &o.Address,
			&o.TutoringTime, &o.Salary, &o.RequirementDesc,
		)
		return o, err
	}
	err := rows.Scan(
		&o.ID, &o.Code, &o.Status, &o.IsVisible, &o.IsDeleted,
		&o.StudentGender, &o.TeachingType, &o.StudentGrade, &o.StudentLevel, &o.GradeScore,
		&o.Subjects, &o.TeacherType, &o.TeacherGender, &o.OrderTags,
		&o.District, &o.City, &o.Address,
		&o.TutoringTime, &o.Salary, &o.RequirementDesc,
		&o.CreatedBy, &o.UpdatedBy, &o.DeletedBy,
		&o.CreatedAt, &o.UpdatedAt, &o.DeletedAt,
		&o.DealTeacherID, &o.DealStaffID, &o.DealTime,
		&o.CreatedByName, &o.UpdatedByName, &o.DeletedByName,
		&o.DealTeacherName, &o.DealStaffName,
	)
	return o, err
}

func queryFailure(op, sql string, args []any, err error) error {
	logger.Log.Error("order listing query failed",
		zap.String("op", op),
		zap.String("sql", sql),
		zap.Any("args", args),
		zap.Error(err),
	)
	return fmt.Errorf("%s: %w", op, err)
}

// numberPlaceholders rewrites `?` placeholders to the positional $1..$n form
// pgx expects. Clause text never contains a literal question mark.
func numberPlaceholders(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))
	n := 0
	for _, r := range sql {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func dropEmpty(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
