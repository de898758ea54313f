package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/travel-desk/internal/domain"
)

// AttendanceRepo defines the persistence operations for driver attendance.
type AttendanceRepo interface {
	// Upsert records attendance for (driver, date), replacing any earlier mark.
	Upsert(ctx context.Context, a domain.Attendance) (domain.Attendance, error)
	// ListRange returns a driver's records dated within [from, to], by date.
	ListRange(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]domain.Attendance, error)
}

type pgAttendanceRepo struct {
	db db
}

// NewAttendanceRepo constructs an AttendanceRepo backed by the provided db connection.
func NewAttendanceRepo(db db) AttendanceRepo {
	return &pgAttendanceRepo{db: db}
}

const attendanceColumns = `driver_id, date, status, notes, marked_at`

func (r *pgAttendanceRepo) Upsert(ctx context.Context, a domain.Attendance) (domain.Attendance, error) {
	const q = `
		INSERT INTO attendance (driver_id, date, status, notes)
		VALUES (@driver_id, @date, @status, @notes)
		ON CONFLICT (driver_id, date) DO UPDATE
		SET status = EXCLUDED.status, notes = EXCLUDED.notes, marked_at = now()
		RETURNING ` + attendanceColumns

	args := pgx.NamedArgs{
		"driver_id": a.DriverID,
		"date":      pgtype.Date{Time: a.Date, Valid: true},
		"status":    string(a.Status),
		"notes":     a.Notes,
	}
	result, err := scanAttendance(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Attendance{}, fmt.Errorf("repo.AttendanceRepo.Upsert: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgAttendanceRepo) ListRange(ctx context.Context, driverID uuid.UUID, from, to time.Time) ([]domain.Attendance, error) {
	const q = `
		SELECT ` + attendanceColumns + `
		FROM attendance
		WHERE driver_id = @driver_id AND date BETWEEN @from AND @to
		ORDER BY date`

	args := pgx.NamedArgs{
		"driver_id": driverID,
		"from":      pgtype.Date{Time: from, Valid: true},
		"to":        pgtype.Date{Time: to, Valid: true},
	}
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.AttendanceRepo.ListRange: %w", err)
	}
	records, err := collect(rows, scanAttendance)
	if err != nil {
		return nil, fmt.Errorf("repo.AttendanceRepo.ListRange: %w", err)
	}
	return records, nil
}

func scanAttendance(s scanner) (domain.Attendance, error) {
	var (
		a        domain.Attendance
		driverID pgtype.UUID
		date     pgtype.Date
		status   string
	)
	if err := s.Scan(&driverID, &date, &status, &a.Notes, &a.MarkedAt); err != nil {
		return domain.Attendance{}, err
	}
	a.DriverID = uuid.UUID(driverID.Bytes)
	a.Date = date.Time
	a.Status = domain.AttendanceStatus(status)
	return a, nil
}
