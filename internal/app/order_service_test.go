package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GGyongfeng/HuiXueJiaoPei/internal/clock"
	"github.com/GGyongfeng/HuiXueJiaoPei/internal/domain"
)

type fakeOrderRepo struct {
	orders map[int64]*domain.Order
	nextID int64

	lastUpdate  domain.OrderUpdate
	lastStaffID int64
	lastAt      time.Time
	failWith    error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[int64]*domain.Order{}, nextID: 1}
}

func (f *fakeOrderRepo) add(o domain.Order) int64 {
	id := f.nextID
	f.nextID++
	o.ID = id
	f.orders[id] = &o
	return id
}

func (f *fakeOrderRepo) Create(_ context.Context, o domain.Order) (int64, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	for _, existing := range f.orders {
		if existing.Code == o.Code && !existing.IsDeleted {
			return 0, domain.ErrOrderCodeTaken
		}
	}
	return f.add(o), nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id int64) (domain.Order, error) {
	o, ok := f.orders[id]
	if !ok || o.IsDeleted {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return *o, nil
}

func (f *fakeOrderRepo) Update(_ context.Context, id int64, upd domain.OrderUpdate, staffID int64, at time.Time) error {
	o, ok := f.orders[id]
	if !ok || o.IsDeleted {
		return domain.ErrOrderNotFound
	}
	f.lastUpdate = upd
	f.lastStaffID = staffID
	f.lastAt = at
	o.UpdatedBy = &staffID
	o.UpdatedAt = at
	return nil
}

func (f *fakeOrderRepo) SoftDelete(_ context.Context, id, staffID int64, at time.Time) error {
	o, ok := f.orders[id]
	if !ok || o.IsDeleted {
		return domain.ErrOrderNotFound
	}
	o.IsDeleted = true
	o.DeletedBy = &staffID
	o.DeletedAt = &at
	return nil
}

func (f *fakeOrderRepo) MarkFulfilled(_ context.Context, id, teacherID, staffID int64, at time.Time) error {
	o, ok := f.orders[id]
	if !ok || o.IsDeleted {
		return domain.ErrOrderNotFound
	}
	o.Status = domain.StatusFulfilled
	o.DealTeacherID = &teacherID
	o.DealStaffID = &staffID
	o.DealTime = &at
	o.UpdatedBy = &staffID
	return nil
}

func (f *fakeOrderRepo) MarkUnfulfilled(_ context.Context, id, staffID int64, at time.Time) error {
	o, ok := f.orders[id]
	if !ok || o.IsDeleted {
		return domain.ErrOrderNotFound
	}
	o.Status = domain.StatusUnfulfilled
	o.DealTeacherID = nil
	o.DealStaffID = nil
	o.DealTime = nil
	o.UpdatedBy = &staffID
	return nil
}

func (f *fakeOrderRepo) List(_ context.Context, _ domain.ListQuery) (domain.ListResult, error) {
	return domain.ListResult{}, nil
}

func (f *fakeOrderRepo) TeacherList(_ context.Context, _ domain.ListQuery) (domain.ListResult, error) {
	return domain.ListResult{}, nil
}

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestOrderService_Create(t *testing.T) {
	t.Parallel()

	t.Run("fills defaults and stamps creator", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc := NewOrderService(repo, clock.NewFixed(testNow))

		id, err := svc.Create(context.Background(), CreateOrderInput{
			Code:     "T20250301",
			Subjects: []string{"Mathematics"},
			StaffID:  3,
		})
		require.NoError(t, err)

		created := repo.orders[id]
		require.NotNil(t, created)
		assert.Equal(t, "Tianjin", created.City)
		assert.Equal(t, "None", created.TeacherType)
		assert.Equal(t, "None", created.TeacherGender)
		assert.Equal(t, int64(3), created.CreatedBy)
		assert.Equal(t, testNow, created.CreatedAt)
	})

	t.Run("duplicate code on a live order is rejected", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc := NewOrderService(repo, clock.NewFixed(testNow))

		_, err := svc.Create(context.Background(), CreateOrderInput{
			Code: "T1", Subjects: []string{"English"}, StaffID: 1,
		})
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), CreateOrderInput{
			Code: "T1", Subjects: []string{"Physics"}, StaffID: 1,
		})
		assert.ErrorIs(t, err, domain.ErrOrderCodeTaken)
		assert.Len(t, repo.orders, 1)
	})

	t.Run("validation failures never reach the repository", func(t *testing.T) {
		repo := newFakeOrderRepo()
		repo.failWith = errors.New("repo must not be called")
		svc := NewOrderService(repo, clock.NewFixed(testNow))

		_, err := svc.Create(context.Background(), CreateOrderInput{Subjects: []string{"x"}, StaffID: 1})
		assert.ErrorIs(t, err, domain.ErrOrderCodeRequired)

		_, err = svc.Create(context.Background(), CreateOrderInput{Code: "T1", StaffID: 1})
		assert.ErrorIs(t, err, domain.ErrSubjectsRequired)

		_, err = svc.Create(context.Background(), CreateOrderInput{Code: "T1", Subjects: []string{"x"}})
		assert.ErrorIs(t, err, domain.ErrStaffRequired)
	})
}

func TestOrderService_Update(t *testing.T) {
	t.Parallel()

	t.Run("passes partial fields and stamps staff and time", func(t *testing.T) {
		repo := newFakeOrderRepo()
		id := repo.add(domain.Order{Code: "T1"})
		svc := NewOrderService(repo, clock.NewFixed(testNow))

		salary := "200/h"
		err := svc.Update(context.Background(), id, domain.OrderUpdate{Salary: &salary}, 5)
		require.NoError(t, err)

		assert.Equal(t, &salary, repo.lastUpdate.Salary)
		assert.Nil(t, repo.lastUpdate.District)
		assert.Equal(t, int64(5), repo.lastStaffID)
		assert.Equal(t, testNow, repo.lastAt)
	})

	t.Run("empty update is rejected", func(t *testing.T) {
		repo := newFakeOrderRepo()
		id := repo.add(domain.Order{Code: "T1"})
		svc := NewOrderService(repo, clock.NewFixed(testNow))

		err := svc.Update(context.Background(), id, domain.OrderUpdate{}, 5)
		assert.ErrorIs(t, err, domain.ErrEmptyUpdate)
	})

	t.Run("missing staff identity is rejected", func(t *testing.T) {
		repo := newFakeOrderRepo()
		id := repo.add(domain.Order{Code: "T1"})
		svc := NewOrderService(repo, clock.NewFixed(testNow))

		v := true
		err := svc.Update(context.Background(), id, domain.OrderUpdate{IsVisible: &v}, 0)
		assert.ErrorIs(t, err, domain.ErrStaffRequired)
	})
}

func TestOrderService_Delete(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo()
	id := repo.add(domain.Order{Code: "T1"})
	svc := NewOrderService(repo, clock.NewFixed(testNow))

	require.NoError(t, svc.Delete(context.Background(), id, 2))
	assert.True(t, repo.orders[id].IsDeleted)
	assert.Equal(t, &testNow, repo.orders[id].DeletedAt)

	// Second delete is a no-op reported as not-found, not a store failure.
	err := svc.Delete(context.Background(), id, 2)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderService_StatusTransitions(t *testing.T) {
	t.Parallel()

	t.Run("fulfilled stamps deal fields", func(t *testing.T) {
		repo := newFakeOrderRepo()
		id := repo.add(domain.Order{Code: "T1", Status: domain.StatusUnfulfilled})
		svc := NewOrderService(repo, clock.NewFixed(testNow))

		require.NoError(t, svc.MarkFulfilled(context.Background(), id, 9, 4))

		o := repo.orders[id]
		assert.Equal(t, domain.StatusFulfilled, o.Status)
		assert.Equal(t, int64(9), *o.DealTeacherID)
		assert.Equal(t, int64(4), *o.DealStaffID)
		assert.Equal(t, testNow, *o.DealTime)
	})

	t.Run("fulfilled requires a teacher", func(t *testing.T) {
		repo := newFakeOrderRepo()
		id := repo.add(domain.Order{Code: "T1"})
		svc := NewOrderService(repo, clock.NewFixed(testNow))

		err := svc.MarkFulfilled(context.Background(), id, 0, 4)
		assert.ErrorIs(t, err, domain.ErrTeacherRequired)
	})

	t.Run("unfulfilled clears deal fields", func(t *testing.T) {
		repo := newFakeOrderRepo()
		teacherID, staffID := int64(9), int64(4)
		dealAt := testNow.Add(-time.Hour)
		id := repo.add(domain.Order{
			Code:          "T1",
			Status:        domain.StatusFulfilled,
			DealTeacherID: &teacherID,
			DealStaffID:   &staffID,
			DealTime:      &dealAt,
		})
		svc := NewOrderService(repo, clock.NewFixed(testNow))

		require.NoError(t, svc.MarkUnfulfilled(context.Background(), id, 4))

		o := repo.orders[id]
		assert.Equal(t, domain.StatusUnfulfilled, o.Status)
		assert.Nil(t, o.DealTeacherID)
		assert.Nil(t, o.DealStaffID)
		assert.Nil(t, o.DealTime)
	})

	t.Run("transition against missing order reports not found", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc := NewOrderService(repo, clock.NewFixed(testNow))

		err := svc.MarkFulfilled(context.Background(), 99, 9, 4)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)

		err = svc.MarkUnfulfilled(context.Background(), 99, 4)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func TestOrderService_Get(t *testing.T) {
	t.Parallel()

	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, clock.NewFixed(testNow))

	_, err := svc.Get(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	id := repo.add(domain.Order{Code: "T1"})
	got, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "T1", got.Code)
}
