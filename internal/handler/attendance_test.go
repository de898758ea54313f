package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/handler"
)

func TestMarkAttendance_200(t *testing.T) {
	driverID := uuid.New()
	var got domain.Attendance
	svc := &mockAttendanceServicer{
		mark: func(_ context.Context, a domain.Attendance, actor domain.Actor) (domain.Attendance, error) {
			assert.Equal(t, driverID, actor.DriverID)
			got = a
			return a, nil
		},
	}

	rec := do(t, newHTTPHandler(handler.Deps{Attendance: svc}), driverActor(driverID), http.MethodPut,
		"/drivers/"+driverID.String()+"/attendance/2025-06-10", map[string]any{"status": "Present", "notes": "on time"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, driverID, got.DriverID)
	assert.Equal(t, june(10), got.Date)
	assert.Equal(t, domain.AttendancePresent, got.Status)
	assert.Equal(t, "on time", got.Notes)
	assert.Equal(t, june(10), decode[handler.Attendance](t, rec).Date.Time)
}

func TestMarkAttendance_Errors(t *testing.T) {
	driverID := uuid.New()
	svc := &mockAttendanceServicer{
		mark: func(context.Context, domain.Attendance, domain.Actor) (domain.Attendance, error) {
			return domain.Attendance{}, fmt.Errorf("%w: attendance belongs to another driver", domain.ErrForbidden)
		},
	}
	h := newHTTPHandler(handler.Deps{Attendance: svc})
	path := "/drivers/" + driverID.String() + "/attendance/"

	rec := do(t, h, driverActor(uuid.New()), http.MethodPut, path+"2025-06-10", map[string]any{"status": "Present"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, adminActor(), http.MethodPut, path+"June-10", map[string]any{"status": "Present"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, adminActor(), http.MethodPut, path+"2025-06-10", map[string]any{"status": "Sick"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListAttendance_200(t *testing.T) {
	driverID := uuid.New()
	svc := &mockAttendanceServicer{
		month: func(_ context.Context, id uuid.UUID, month string, _ domain.Actor) ([]domain.Attendance, error) {
			assert.Equal(t, driverID, id)
			assert.Equal(t, "2025-06", month)
			return []domain.Attendance{
				{DriverID: id, Date: june(2), Status: domain.AttendancePresent},
				{DriverID: id, Date: june(3), Status: domain.AttendanceLeave},
			}, nil
		},
	}

	rec := do(t, newHTTPHandler(handler.Deps{Attendance: svc}), adminActor(), http.MethodGet,
		"/drivers/"+driverID.String()+"/attendance?month=2025-06", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[[]handler.Attendance](t, rec)
	require.Len(t, resp, 2)
	assert.Equal(t, domain.AttendanceLeave, resp[1].Status)
}
