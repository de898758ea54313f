package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/travel-desk/internal/domain"
)

// InvoiceRepo defines the persistence operations for invoice metadata.
type InvoiceRepo interface {
	Create(ctx context.Context, inv domain.Invoice) (domain.Invoice, error)
	// List returns all invoices, newest first.
	List(ctx context.Context) ([]domain.Invoice, error)
}

type pgInvoiceRepo struct {
	db db
}

// NewInvoiceRepo constructs an InvoiceRepo backed by the provided db connection.
func NewInvoiceRepo(db db) InvoiceRepo {
	return &pgInvoiceRepo{db: db}
}

const invoiceColumns = `id, trip_id, invoice_number, pdf_url, storage_key, generated_by, generated_at`

func (r *pgInvoiceRepo) Create(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	const q = `
		INSERT INTO invoices (trip_id, invoice_number, pdf_url, storage_key, generated_by)
		VALUES (@trip_id, @invoice_number, @pdf_url, @storage_key, @generated_by)
		RETURNING ` + invoiceColumns

	args := pgx.NamedArgs{
		"trip_id":        inv.TripID,
		"invoice_number": inv.InvoiceNumber,
		"pdf_url":        inv.PDFURL,
		"storage_key":    inv.StorageKey,
		"generated_by":   inv.GeneratedBy,
	}
	result, err := scanInvoice(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("repo.InvoiceRepo.Create: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgInvoiceRepo) List(ctx context.Context) ([]domain.Invoice, error) {
	const q = `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY generated_at DESC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.InvoiceRepo.List: %w", err)
	}
	invoices, err := collect(rows, scanInvoice)
	if err != nil {
		return nil, fmt.Errorf("repo.InvoiceRepo.List: %w", err)
	}
	return invoices, nil
}

func scanInvoice(s scanner) (domain.Invoice, error) {
	var (
		inv    domain.Invoice
		id     pgtype.UUID
		tripID pgtype.UUID
	)
	err := s.Scan(&id, &tripID, &inv.InvoiceNumber, &inv.PDFURL, &inv.StorageKey, &inv.GeneratedBy, &inv.GeneratedAt)
	if err != nil {
		return domain.Invoice{}, err
	}
	inv.ID = uuid.UUID(id.Bytes)
	inv.TripID = uuid.UUID(tripID.Bytes)
	return inv, nil
}
