package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"creator-subscription-service/internal/infra/logging"
)

// csvHeader is the 12-column export contract. Column order and naming are
// load-bearing for downstream consumers; do not reorder.
var csvHeader = []string{
	"Fan Name",
	"Creator ID",
	"Creator Name",
	"Plan Name",
	"Price",
	"Duration (Days)",
	"Start Date",
	"End Date",
	"Duration Text",
	"Status",
	"Auto Renewal",
	"Remaining Days",
}

// Compile-time check
var _ ExportUseCase = (*exportUC)(nil)

// ExportUseCase serializes dashboard rows to CSV. It is a direct consumer
// of the dashboard aggregator and adds no filtering logic of its own.
type ExportUseCase interface {
	ExportCSV(ctx context.Context, w io.Writer, filter string) error
}

type exportUC struct {
	dashboard DashboardUseCase
	log       *zerolog.Logger
}

func NewExportUseCase(dashboard DashboardUseCase, logger *zerolog.Logger) *exportUC {
	return &exportUC{dashboard: dashboard, log: logger}
}

// ExportCSV writes one row per subscription matching filter. An invalid
// filter propagates ErrInvalidArgument from the dashboard unchanged.
func (uc *exportUC) ExportCSV(ctx context.Context, w io.Writer, filter string) error {
	defer logging.TraceDuration(uc.log, "ExportUC.ExportCSV")()

	items, err := uc.dashboard.List(ctx, filter)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, it := range items {
		record := []string{
			it.FanName,
			it.CreatorID,
			it.CreatorName,
			it.PlanName,
			it.Price.String(),
			strconv.Itoa(it.DurationDays),
			formatDate(it.StartDate),
			formatDate(it.EndDate),
			it.DurationText,
			it.Status,
			autoRenewalText(it.AutoRenewal),
			strconv.Itoa(it.RemainingDays),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func autoRenewalText(on bool) string {
	if on {
		return "On"
	}
	return "Off"
}
