package reportService

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/KotFed0t/crypto_portfolio_bot/config"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/model"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/service"
	"github.com/KotFed0t/crypto_portfolio_bot/utils"
)

const reportFilenameLayout = "portfolio_2006-01-02_15-04"

type ReportGenerator interface {
	Generate(ctx context.Context, valuation model.Valuation) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

type Report struct {
	Filename string
	Content  []byte
	// DownloadLink is set instead of Content when the file was uploaded to cloud storage
	DownloadLink string
}

type ReportService struct {
	cfg          *config.Config
	generator    ReportGenerator
	cloudStorage CloudStorage
}

// New creates the service; cloudStorage may be nil when uploads are disabled.
func New(cfg *config.Config, generator ReportGenerator, cloudStorage CloudStorage) *ReportService {
	return &ReportService{cfg: cfg, generator: generator, cloudStorage: cloudStorage}
}

func (s *ReportService) ExportValuation(ctx context.Context, valuation *model.Valuation) (Report, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ReportService.ExportValuation"

	if valuation == nil || len(valuation.Positions) == 0 {
		return Report{}, service.ErrNothingToExport
	}

	fileBytes, ext, err := s.generator.Generate(ctx, *valuation)
	if err != nil {
		slog.Error("got error from generator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return Report{}, err
	}

	filename := valuation.ValuedAt.Format(reportFilenameLayout) + ext

	if len(fileBytes) <= s.cfg.Telegram.FileLimitInBytes {
		return Report{Filename: filename, Content: fileBytes}, nil
	}

	// телеграм не примет такой файл, отдаем ссылку на облако
	if s.cloudStorage == nil {
		return Report{}, fmt.Errorf("%w: %d bytes", service.ErrFileTooLarge, len(fileBytes))
	}

	link, err := s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return Report{}, err
	}

	return Report{Filename: filename, DownloadLink: link}, nil
}
