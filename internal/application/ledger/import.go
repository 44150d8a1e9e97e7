package ledger

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/dms/backend/internal/domain/identity"
	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/csvimport"
	"github.com/dms/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

const (
	maxImportRows   = 5000
	maxImportErrors = 100
	defaultOpening  = "Opening balance"
	importDateFmt   = "2006-01-02"
)

var openingBalanceColumns = []string{"mobile", "amount"}

// ImportOptions controls an opening balance import
type ImportOptions struct {
	// DryRun validates the file without posting anything
	DryRun bool
}

// ImportReport summarizes an opening balance import. When Errors is
// non-empty nothing was posted.
type ImportReport struct {
	Rows        int                  `json:"rows"`
	Imported    int                  `json:"imported"`
	DryRun      bool                 `json:"dry_run"`
	Errors      []csvimport.RowError `json:"errors,omitempty"`
	TotalErrors int                  `json:"total_errors"`
}

type openingRow struct {
	line        int
	customerID  uuid.UUID
	amount      decimal.Decimal
	date        *time.Time
	description string
}

// ImportOpeningBalances reads a CSV of mobile,amount[,date,description]
// rows and posts one opening_balance entry per customer, dated today when
// the date column is blank. The whole file is validated first; any row
// error rejects the file.
func (s *Service) ImportOpeningBalances(ctx context.Context, p identity.Principal, src io.Reader, opts ImportOptions) (report *ImportReport, err error) {
	ctx, span := telemetry.StartSpan(ctx, "ledger.import_opening_balances",
		attribute.Bool("dry_run", opts.DryRun),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := identity.RequireAdmin(p); err != nil {
		return nil, err
	}

	reader, err := csvimport.NewReader(src, openingBalanceColumns,
		csvimport.WithMaxRows(maxImportRows),
		csvimport.WithLegacyEncoding(charmap.Windows1252),
	)
	if err != nil {
		return nil, shared.NewValidationError(err.Error())
	}

	rows, total, errs, err := s.parseOpeningRows(ctx, reader)
	if err != nil {
		return nil, err
	}
	report = &ImportReport{Rows: total, DryRun: opts.DryRun}
	if !errs.Empty() {
		report.Errors = errs.Items()
		report.TotalErrors = errs.Total()
		s.logger.Warn("opening balance import rejected",
			zap.Int("rows", report.Rows),
			zap.Int("errors", report.TotalErrors),
		)
		return report, nil
	}
	if opts.DryRun {
		return report, nil
	}

	today := s.now()
	for _, row := range rows {
		date := today
		if row.date != nil {
			date = *row.date
		}
		if _, err := s.CreateEntry(ctx, p, CreateEntryRequest{
			CustomerID:  row.customerID,
			EntryDate:   &date,
			Description: row.description,
			Type:        string(ledger.EntryTypeOpeningBalance),
			Amount:      &row.amount,
			Reference:   "import",
		}); err != nil {
			s.logger.Error("opening balance import stopped",
				zap.Int("line", row.line),
				zap.Int("imported", report.Imported),
				zap.Error(err),
			)
			return report, err
		}
		report.Imported++
	}

	s.logger.Info("opening balances imported", zap.Int("imported", report.Imported))
	return report, nil
}

func (s *Service) parseOpeningRows(ctx context.Context, reader *csvimport.Reader) ([]openingRow, int, *csvimport.Errors, error) {
	errs := &csvimport.Errors{Max: maxImportErrors}
	seen := make(map[string]int)
	var rows []openingRow
	total := 0

	for {
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, nil, shared.NewValidationError(err.Error())
		}
		total++

		parsed, ok := openingRow{line: row.Line, description: row.Get("description")}, true
		if parsed.description == "" {
			parsed.description = defaultOpening
		}
		fail := func(column, code, message, value string) {
			ok = false
			errs.Add(csvimport.RowError{Line: row.Line, Column: column, Code: code, Message: message, Value: value})
		}

		mobile := row.Get("mobile")
		switch {
		case mobile == "":
			fail("mobile", csvimport.CodeRequired, "mobile is required", "")
		case seen[mobile] > 0:
			fail("mobile", csvimport.CodeDuplicate, "customer already listed on an earlier line", mobile)
		default:
			seen[mobile] = row.Line
			customer, err := s.customers.FindByMobile(ctx, mobile)
			switch {
			case errors.Is(err, shared.ErrNotFound):
				fail("mobile", csvimport.CodeNotFound, "no customer with this mobile", mobile)
			case err != nil:
				return nil, 0, nil, err
			default:
				parsed.customerID = customer.ID
			}
		}

		if raw := row.Get("amount"); raw == "" {
			fail("amount", csvimport.CodeRequired, "amount is required", "")
		} else if amount, err := decimal.NewFromString(raw); err != nil || amount.IsNegative() {
			fail("amount", csvimport.CodeInvalid, "amount must be a non-negative number", raw)
		} else {
			parsed.amount = amount
		}

		if raw := row.Get("date"); raw != "" {
			d, err := time.Parse(importDateFmt, raw)
			if err != nil {
				fail("date", csvimport.CodeInvalid, "date must be YYYY-MM-DD", raw)
			} else {
				parsed.date = &d
			}
		}

		if ok {
			rows = append(rows, parsed)
		}
	}
	return rows, total, errs, nil
}
