package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/riskibarqy/match-digest/internal/digest"
	"github.com/riskibarqy/match-digest/internal/domain/match"
	"github.com/riskibarqy/match-digest/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// ReportService exports settled matches with their predictions.
type ReportService struct {
	reader match.Reader
	logger *logging.Logger
}

func NewReportService(reader match.Reader, logger *logging.Logger) *ReportService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReportService{reader: reader, logger: logger.Named("report")}
}

// ExportSettled writes matches dated from..to with a known full-time score to w
// as CSV and returns the number of rows.
func (s *ReportService) ExportSettled(ctx context.Context, from, to string, w io.Writer) (count int, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.ExportSettled",
		attribute.String("from", from),
		attribute.String("to", to),
	)
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	from, err = match.NormalizeDate(from)
	if err != nil {
		return 0, fmt.Errorf("%w: from: %v", ErrInvalidInput, err)
	}
	to, err = match.NormalizeDate(to)
	if err != nil {
		return 0, fmt.Errorf("%w: to: %v", ErrInvalidInput, err)
	}
	if from > to {
		return 0, fmt.Errorf("%w: from %s is after to %s", ErrInvalidInput, from, to)
	}

	results, err := s.reader.ListSettledResults(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("list settled results: %w", err)
	}
	if err := digest.WriteSettledCSV(w, results); err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "settled report exported", "from", from, "to", to, "rows", len(results))
	return len(results), nil
}
