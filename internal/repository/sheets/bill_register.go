package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/akhilrajps/sahara-mess/internal/config"
	"github.com/akhilrajps/sahara-mess/internal/domain/models"
)

const registerRange = "BillRegister!A:H"

// Exporter appends generated bills to the hostel office's bill-register
// spreadsheet. Export is best-effort: the bill run never fails on it.
type Exporter interface {
	AppendBills(ctx context.Context, month string, bills []models.Bill) error
}

// BillRegister implements Exporter using the official Google Sheets API.
type BillRegister struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewBillRegister builds a Google Sheets backed bill register.
func NewBillRegister(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*BillRegister, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &BillRegister{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendBills writes one register row per bill.
func (r *BillRegister) AppendBills(ctx context.Context, month string, bills []models.Bill) error {
	if len(bills) == 0 {
		return nil
	}

	rows := make([][]interface{}, 0, len(bills))
	for _, b := range bills {
		rows = append(rows, []interface{}{
			month,
			b.MessNo,
			b.BillableDays,
			b.PerDayCharge,
			b.EstablishmentCharge,
			b.FeastCharge + b.SpecialCharge,
			b.TotalAmount,
			string(b.Status),
		})
	}

	payload := &sheetsapi.ValueRange{Values: rows}
	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, registerRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append bill register rows for %s: %w", month, err)
	}

	r.logger.Debug("bill register rows appended", zap.String("month", month), zap.Int("rows", len(rows)))
	return nil
}
