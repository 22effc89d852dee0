package http

import (
	"net/http"

	"github.com/GGyongfeng/HuiXueJiaoPei/internal/domain"
)

// teacherOrderResponse is the narrow shape the teacher portal sees: no
// status, visibility, deal, or audit fields.
type teacherOrderResponse struct {
	ID              int64    `json:"id"`
	Code            string   `json:"tutor_code"`
	StudentGender   string   `json:"student_gender"`
	TeachingType    string   `json:"teaching_type"`
	StudentGrade    string   `json:"student_grade"`
	StudentLevel    string   `json:"student_level"`
	GradeScore      string   `json:"grade_score"`
	Subjects        []string `json:"subjects"`
	TeacherType     string   `json:"teacher_type"`
	TeacherGender   string   `json:"teacher_gender"`
	OrderTags       []string `json:"order_tags"`
	District        string   `json:"district"`
	City            string   `json:"city"`
	Address         string   `json:"address"`
	TutoringTime    string   `json:"tutoring_time"`
	Salary          string   `json:"salary"`
	RequirementDesc string   `json:"requirement_desc"`
}

type teacherListResponse struct {
	List     []teacherOrderResponse `json:"list"`
	Total    int                    `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"pageSize"`
}

// HandleTeacherListOrders serves the restricted listing. The service layer
// forces visibility and status gating; only the reduced filter set is read
// from the request.
func HandleTeacherListOrders(svc OrderService) http.HandlerFunc {
	fields := make([]string, 0, len(domain.TeacherFilters()))
	for _, f := range domain.TeacherFilters() {
		fields = append(fields, f.Field)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		q := listQueryFromRequest(r, fields)

		res, err := svc.TeacherList(r.Context(), q)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		list := make([]teacherOrderResponse, 0, len(res.Orders))
		for _, o := range res.Orders {
			subjects := o.Subjects
			if subjects == nil {
				subjects = []string{}
			}
			tags := o.OrderTags
			if tags == nil {
				tags = []string{}
			}
			list = append(list, teacherOrderResponse{
				ID:              o.ID,
				Code:            o.Code,
				StudentGender:   o.StudentGender,
				TeachingType:    o.TeachingType,
				StudentGrade:    o.StudentGrade,
				StudentLevel:    o.StudentLevel,
				GradeScore:      o.GradeScore,
				Subjects:        subjects,
				TeacherType:     o.TeacherType,
				TeacherGender:   o.TeacherGender,
				OrderTags:       tags,
				District:        o.District,
				City:            o.City,
				Address:         o.Address,
				TutoringTime:    o.TutoringTime,
				Salary:          o.Salary,
				RequirementDesc: o.RequirementDesc,
			})
		}
		writeData(w, "orders listed", teacherListResponse{
			List:     list,
			Total:    res.Total,
			Page:     q.Page,
			PageSize: q.PageSize,
		})
	}
}

// HandleTeacherFilterCatalog returns the catalog without admin-only fields.
func HandleTeacherFilterCatalog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, "filters listed", domain.TeacherFilters())
	}
}
