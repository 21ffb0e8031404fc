package trackerService

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fintrackhq/fintrack/internal/model"
	"github.com/fintrackhq/fintrack/internal/service"
	"github.com/fintrackhq/fintrack/utils"
)

// BuildReport assembles the export view of the dataset.
func (s *TrackerService) BuildReport(ctx context.Context) model.Report {
	report := model.Report{
		GeneratedAt: nowRFC3339(),
		Assets:      s.ListAssets(ctx),
		Trades:      s.TradeInsights(ctx),
		Monthly:     s.MonthlyPnL(ctx),
	}
	report.TotalValue = s.AssetSummary(ctx).TotalValue
	return report
}

// GenerateReport renders the dataset to a downloadable workbook.
func (s *TrackerService) GenerateReport(ctx context.Context) (fileBytes []byte, filename string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.GenerateReport"

	slog.Debug("GenerateReport start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GenerateReport finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	fileBytes, ext, err := s.reportGen.Generate(ctx, s.BuildReport(ctx))
	if err != nil {
		slog.Error("got error from reportGen.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	filename = fmt.Sprintf("fintrack-report-%s%s", time.Now().UTC().Format("2006-01-02"), ext)

	return fileBytes, filename, nil
}

// UploadReport generates the workbook and pushes it to cloud storage,
// returning a shareable download link.
func (s *TrackerService) UploadReport(ctx context.Context) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TrackerService.UploadReport"

	if s.cloudStorage == nil {
		return "", service.ErrReportUploadUnavailable
	}

	fileBytes, filename, err := s.GenerateReport(ctx)
	if err != nil {
		return "", err
	}

	downloadLink, err = s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	slog.Info("report uploaded", slog.String("rqID", rqID), slog.String("op", op), slog.String("link", downloadLink))

	return downloadLink, nil
}
