package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/events"
	"github.com/pkordes/travel-desk/internal/service"
)

func TestVehicleService_Create_NormalizesNumberAndForcesAvailable(t *testing.T) {
	var stored domain.Vehicle
	notifier := &recordingNotifier{}
	svc := service.NewVehicleService(&mockVehicleRepo{
		create: func(_ context.Context, v domain.Vehicle) (domain.Vehicle, error) {
			stored = v
			v.ID = uuid.New()
			return v, nil
		},
	}, notifier)

	got, err := svc.Create(context.Background(), domain.Vehicle{
		Name:   " Innova ",
		Number: "mh 12 ab 1234",
		Type:   "SUV",
		Status: domain.StatusOnTrip,
	})

	require.NoError(t, err)
	assert.Equal(t, "MH12AB1234", stored.Number)
	assert.Equal(t, "Innova", stored.Name)
	assert.Equal(t, domain.StatusAvailable, stored.Status)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, []events.Topic{events.TopicVehicles}, notifier.topics)
}

func TestVehicleService_Create_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   domain.Vehicle
	}{
		{"missing name", domain.Vehicle{Number: "MH12AB1234", Type: "SUV"}},
		{"missing type", domain.Vehicle{Name: "Innova", Number: "MH12AB1234"}},
		{"bad number", domain.Vehicle{Name: "Innova", Number: "12-ABC", Type: "SUV"}},
		{"too many letters", domain.Vehicle{Name: "Innova", Number: "MH12ABC1234", Type: "SUV"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := service.NewVehicleService(&mockVehicleRepo{}, nil)

			_, err := svc.Create(context.Background(), tc.in)

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestVehicleService_Update_Conflict(t *testing.T) {
	svc := service.NewVehicleService(&mockVehicleRepo{
		update: func(context.Context, domain.Vehicle) (domain.Vehicle, error) {
			return domain.Vehicle{}, domain.ErrConflict
		},
	}, nil)

	_, err := svc.Update(context.Background(), domain.Vehicle{ID: uuid.New(), Name: "Innova", Number: "MH12AB1234", Type: "SUV"})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestVehicleService_List_NilBecomesEmpty(t *testing.T) {
	svc := service.NewVehicleService(&mockVehicleRepo{
		list: func(context.Context) ([]domain.Vehicle, error) { return nil, nil },
	}, nil)

	got, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestNormalizeVehicleNumber(t *testing.T) {
	assert.Equal(t, "KA01A1234", service.NormalizeVehicleNumber(" ka 01\ta 1234 "))
}

func validDriver() domain.Driver {
	return domain.Driver{
		Name:          "Ravi Kumar",
		Email:         "Ravi@Example.com",
		Phone:         "98765-43210",
		LicenseNumber: "mh1220110012345",
		Salary:        18000,
	}
}

func TestDriverService_Create_OK(t *testing.T) {
	var stored domain.Driver
	svc := service.NewDriverService(&mockDriverRepo{
		create: func(_ context.Context, d domain.Driver) (domain.Driver, error) {
			stored = d
			return d, nil
		},
	}, &mockVehicleRepo{}, nil)

	_, err := svc.Create(context.Background(), validDriver())

	require.NoError(t, err)
	assert.Equal(t, "9876543210", stored.Phone)
	assert.Equal(t, "ravi@example.com", stored.Email)
	assert.Equal(t, "MH1220110012345", stored.LicenseNumber)
	assert.Equal(t, domain.StatusAvailable, stored.Status)
}

func TestDriverService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Driver)
	}{
		{"missing name", func(d *domain.Driver) { d.Name = "" }},
		{"landline phone", func(d *domain.Driver) { d.Phone = "0201234567" }},
		{"short license", func(d *domain.Driver) { d.LicenseNumber = "ABC123" }},
		{"negative salary", func(d *domain.Driver) { d.Salary = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validDriver()
			tc.mutate(&in)
			svc := service.NewDriverService(&mockDriverRepo{}, &mockVehicleRepo{}, nil)

			_, err := svc.Create(context.Background(), in)

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestDriverService_Create_AssignedVehicleMustExist(t *testing.T) {
	svc := service.NewDriverService(&mockDriverRepo{}, &mockVehicleRepo{
		getByID: func(context.Context, uuid.UUID) (domain.Vehicle, error) {
			return domain.Vehicle{}, domain.ErrNotFound
		},
	}, nil)
	in := validDriver()
	vehicleID := uuid.New()
	in.AssignedVehicleID = &vehicleID

	_, err := svc.Create(context.Background(), in)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDriverService_Delete_NotFound(t *testing.T) {
	svc := service.NewDriverService(&mockDriverRepo{
		delete: func(context.Context, uuid.UUID) error { return domain.ErrNotFound },
	}, &mockVehicleRepo{}, nil)

	err := svc.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCustomerService_List(t *testing.T) {
	svc := service.NewCustomerService(&mockCustomerRepo{
		list: func(context.Context) ([]domain.Customer, error) {
			return []domain.Customer{{Name: "Asha"}}, nil
		},
	})

	got, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.Len(t, got, 1)
}
