package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/GGyongfeng/HuiXueJiaoPei/internal/app"
	"github.com/GGyongfeng/HuiXueJiaoPei/internal/domain"
)

// OrderService is the surface the manager endpoints need.
type OrderService interface {
	Create(ctx context.Context, in app.CreateOrderInput) (int64, error)
	Get(ctx context.Context, id int64) (domain.Order, error)
	Update(ctx context.Context, id int64, upd domain.OrderUpdate, staffID int64) error
	Delete(ctx context.Context, id, staffID int64) error
	MarkFulfilled(ctx context.Context, id, teacherID, staffID int64) error
	MarkUnfulfilled(ctx context.Context, id, staffID int64) error
	List(ctx context.Context, q domain.ListQuery) (domain.ListResult, error)
	TeacherList(ctx context.Context, q domain.ListQuery) (domain.ListResult, error)
}

var validate = validator.New()

type createOrderRequest struct {
	Code            string   `json:"tutor_code" validate:"required"`
	StudentGender   string   `json:"student_gender"`
	TeachingType    string   `json:"teaching_type"`
	StudentGrade    string   `json:"student_grade"`
	StudentLevel    string   `json:"student_level"`
	GradeScore      string   `json:"grade_score"`
	Subjects        []string `json:"subjects" validate:"required,min=1,dive,required"`
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

type updateOrderRequest struct {
	StudentGender   *string  `json:"student_gender"`
	TeachingType    *string  `json:"teaching_type"`
	StudentGrade    *string  `json:"student_grade"`
	StudentLevel    *string  `json:"student_level"`
	GradeScore      *string  `json:"grade_score"`
	Subjects        []string `json:"subjects"`
	TeacherType     *string  `json:"teacher_type"`
	TeacherGender   *string  `json:"teacher_gender"`
	OrderTags       []string `json:"order_tags"`
	District        *string  `json:"district"`
	City            *string  `json:"city"`
	Address         *string  `json:"address"`
	TutoringTime    *string  `json:"tutoring_time"`
	Salary          *string  `json:"salary"`
	RequirementDesc *string  `json:"requirement_desc"`
	IsVisible       *bool    `json:"is_visible"`
}

type dealRequest struct {
	TeacherID int64 `json:"teacherId"`
}

type orderResponse struct {
	ID              int64      `json:"id"`
	Code            string     `json:"tutor_code"`
	Status          string     `json:"status"`
	IsVisible       bool       `json:"is_visible"`
	IsDeleted       bool       `json:"is_deleted"`
	StudentGender   string     `json:"student_gender"`
	TeachingType    string     `json:"teaching_type"`
	StudentGrade    string     `json:"student_grade"`
	StudentLevel    string     `json:"student_level"`
	GradeScore      string     `json:"grade_score"`
	Subjects        []string   `json:"subjects"`
	TeacherType     string     `json:"teacher_type"`
	TeacherGender   string     `json:"teacher_gender"`
	OrderTags       []string   `json:"order_tags"`
	District        string     `json:"district"`
	City            string     `json:"city"`
	Address         string     `json:"address"`
	TutoringTime    string     `json:"tutoring_time"`
	Salary          string     `json:"salary"`
	RequirementDesc string     `json:"requirement_desc"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
	DealTime        *time.Time `json:"deal_time,omitempty"`
	DealTeacherID   *int64     `json:"deal_teacher_id,omitempty"`
	DealStaffID     *int64     `json:"deal_staff_id,omitempty"`
	CreatedByName   *string    `json:"created_by_name,omitempty"`
	UpdatedByName   *string    `json:"updated_by_name,omitempty"`
	DeletedByName   *string    `json:"deleted_by_name,omitempty"`
	DealTeacherName *string    `json:"deal_teacher_name,omitempty"`
	DealStaffName   *string    `json:"deal_staff_name,omitempty"`
}

type listResponse struct {
	List     []orderResponse `json:"list"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

func toOrderResponse(o domain.Order) orderResponse {
	subjects := o.Subjects
	if subjects == nil {
		subjects = []string{}
	}
	tags := o.OrderTags
	if tags == nil {
		tags = []string{}
	}
	return orderResponse{
		ID:              o.ID,
		Code:            o.Code,
		Status:          string(o.Status),
		IsVisible:       o.IsVisible,
		IsDeleted:       o.IsDeleted,
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
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		DeletedAt:       o.DeletedAt,
		DealTime:        o.DealTime,
		DealTeacherID:   o.DealTeacherID,
		DealStaffID:     o.DealStaffID,
		CreatedByName:   o.CreatedByName,
		UpdatedByName:   o.UpdatedByName,
		DeletedByName:   o.DeletedByName,
		DealTeacherName: o.DealTeacherName,
		DealStaffName:   o.DealStaffName,
	}
}

func toListResponse(res domain.ListResult, page, pageSize int) listResponse {
	list := make([]orderResponse, 0, len(res.Orders))
	for _, o := range res.Orders {
		list = append(list, toOrderResponse(o))
	}
	return listResponse{List: list, Total: res.Total, Page: page, PageSize: pageSize}
}

// HandleListOrders serves the manager listing with the full filter surface.
func HandleListOrders(svc OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := listQueryFromRequest(r, domain.FilterFields())
		q.IncludeDeleted = r.URL.Query().Get("is_deleted") == "true"
		q.Tags = nonEmpty(r.URL.Query()["order_tags"])

		res, err := svc.List(r.Context(), q)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, "orders listed", toListResponse(res, q.Page, q.PageSize))
	}
}

// HandleGetOrder fetches one order by id.
func HandleGetOrder(svc OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, "order found", toOrderResponse(order))
	}
}

// HandleCreateOrder creates an order; a duplicate live order code is a
// conflict, not an insert.
func HandleCreateOrder(svc OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeFailure(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeFailure(w, http.StatusBadRequest, "missing required fields")
			return
		}

		id, err := svc.Create(r.Context(), app.CreateOrderInput{
			Code:            req.Code,
			StudentGender:   req.StudentGender,
			TeachingType:    req.TeachingType,
			StudentGrade:    req.StudentGrade,
			StudentLevel:    req.StudentLevel,
			GradeScore:      req.GradeScore,
			Subjects:        req.Subjects,
			TeacherType:     req.TeacherType,
			TeacherGender:   req.TeacherGender,
			OrderTags:       req.OrderTags,
			District:        req.District,
			City:            req.City,
			Address:         req.Address,
			TutoringTime:    req.TutoringTime,
			Salary:          req.Salary,
			RequirementDesc: req.RequirementDesc,
			StaffID:         staffIDFromContext(r.Context()),
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, "order created", map[string]int64{"id": id})
	}
}

// HandleUpdateOrder applies a partial update: only supplied fields change.
func HandleUpdateOrder(svc OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		var req updateOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeFailure(w, http.StatusBadRequest, "invalid request body")
			return
		}

		upd := domain.OrderUpdate{
			StudentGender:   req.StudentGender,
			TeachingType:    req.TeachingType,
			StudentGrade:    req.StudentGrade,
			StudentLevel:    req.StudentLevel,
			GradeScore:      req.GradeScore,
			Subjects:        req.Subjects,
			TeacherType:     req.TeacherType,
			TeacherGender:   req.TeacherGender,
			OrderTags:       req.OrderTags,
			District:        req.District,
			City:            req.City,
			Address:         req.Address,
			TutoringTime:    req.TutoringTime,
			Salary:          req.Salary,
			RequirementDesc: req.RequirementDesc,
			IsVisible:       req.IsVisible,
		}
		if err := svc.Update(r.Context(), id, upd, staffIDFromContext(r.Context())); err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, "order updated", nil)
	}
}

// HandleDeleteOrder soft-deletes an order.
func HandleDeleteOrder(svc OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), id, staffIDFromContext(r.Context())); err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, "order deleted", nil)
	}
}

// HandleDealOrder marks an order fulfilled, binding the resolving teacher.
func HandleDealOrder(svc OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		var req dealRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeFailure(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := svc.MarkFulfilled(r.Context(), id, req.TeacherID, staffIDFromContext(r.Context())); err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, "order fulfilled", nil)
	}
}

// HandleUndealOrder reopens a fulfilled order.
func HandleUndealOrder(svc OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		if err := svc.MarkUnfulfilled(r.Context(), id, staffIDFromContext(r.Context())); err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, "order reopened", nil)
	}
}

// HandleFilterCatalog returns the full filter catalog for the manager UI.
func HandleFilterCatalog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, "filters listed", domain.OrderFilters)
	}
}

// listQueryFromRequest collects pagination, keyword, city, and any requested
// catalog fields. A field may repeat for multi-value filters; blank values
// count as not requested.
func listQueryFromRequest(r *http.Request, fields []string) domain.ListQuery {
	query := r.URL.Query()

	filters := make(map[string][]string)
	for _, field := range fields {
		if values := nonEmpty(query[field]); len(values) > 0 {
			filters[field] = values
		}
	}

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(query.Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}

	return domain.ListQuery{
		Filters:  filters,
		Keyword:  query.Get("keyword"),
		City:     query.Get("city"),
		Page:     page,
		PageSize: pageSize,
	}
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeFailure(w, http.StatusBadRequest, domain.ErrInvalidID.Error())
		return 0, false
	}
	return id, true
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
