package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cvscreener/internal/models"
)

// AnalyzerService runs the full pipeline for a batch of documents
// against one job description: extract, segment, prompt, score,
// aggregate. It guarantees one AnalysisResult per input document in
// input order. A document failure never aborts the batch; only an
// unauthorized oracle (shared credential, retrying other documents is
// pointless) does.
type AnalyzerService interface {
	Run(ctx context.Context, jobDescription string, docs []models.RawDocument) ([]models.AnalysisResult, error)
}

type analyzerService struct {
	extractor      ExtractorService
	segmenter      SegmenterService
	promptBuilder  *PromptBuilder
	oracle         OracleClient
	aggregator     AggregatorService
	docConcurrency int
	logger         *zap.Logger
}

func NewAnalyzerService(
	extractor ExtractorService,
	segmenter SegmenterService,
	oracle OracleClient,
	docConcurrency int,
	logger *zap.Logger,
) AnalyzerService {
	if docConcurrency < 1 {
		docConcurrency = 1
	}
	return &analyzerService{
		extractor:      extractor,
		segmenter:      segmenter,
		promptBuilder:  NewPromptBuilder(),
		oracle:         oracle,
		aggregator:     NewAggregatorService(),
		docConcurrency: docConcurrency,
		logger:         logger,
	}
}

func (s *analyzerService) Run(ctx context.Context, jobDescription string, docs []models.RawDocument) ([]models.AnalysisResult, error) {
	results := make([]models.AnalysisResult, len(docs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.docConcurrency)

	for i := range docs {
		group.Go(func() error {
			result, fatal := s.analyzeDocument(groupCtx, jobDescription, &docs[i])
			// Results are slotted by input index, so output order matches
			// input order no matter which document finishes first.
			results[i] = result
			return fatal
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("batch aborted: %w", err)
	}

	return results, nil
}

// analyzeDocument runs one document through the pipeline. The returned
// error is non-nil only for batch-fatal conditions; everything else
// becomes a failed AnalysisResult for this document alone.
func (s *analyzerService) analyzeDocument(ctx context.Context, jobDescription string, doc *models.RawDocument) (models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return failedResult(doc.FileName, fmt.Sprintf("analysis cancelled: %v", err)), nil
	}

	extracted := s.extractor.Extract(doc)
	if !extracted.Succeeded {
		s.logger.Warn("document extraction failed",
			zap.String("file", doc.FileName),
			zap.String("reason", extracted.FailureReason),
		)
		return failedResult(doc.FileName, fmt.Sprintf("extraction failed: %s", extracted.FailureReason)), nil
	}

	cv := s.segmenter.Segment(extracted.Text)
	if _, hasOther := cv.Sections[models.SectionOther]; hasOther && len(cv.Sections) == 1 {
		// Soft signal only: scoring proceeds on the unsegmented text.
		s.logger.Info("no CV sections recognized, scoring unsegmented text",
			zap.String("file", doc.FileName),
		)
	}

	requests := s.promptBuilder.BuildPrompts(jobDescription, cv)

	scores := make([]models.CriterionScore, len(requests))
	criterionGroup, criterionCtx := errgroup.WithContext(ctx)

	for i := range requests {
		criterionGroup.Go(func() error {
			score, err := s.oracle.Evaluate(criterionCtx, requests[i])
			if err != nil {
				return err
			}
			scores[i] = score
			return nil
		})
	}

	if err := criterionGroup.Wait(); err != nil {
		var oerr *OracleError
		if errors.As(err, &oerr) && oerr.Kind == OracleUnauthorized {
			return failedResult(doc.FileName, "oracle rejected credentials"), err
		}
		return failedResult(doc.FileName, fmt.Sprintf("analysis interrupted: %v", err)), nil
	}

	result, err := s.aggregator.Aggregate(doc.FileName, scores)
	if err != nil {
		return failedResult(doc.FileName, fmt.Sprintf("aggregation failed: %v", err)), nil
	}

	s.logger.Info("document analyzed",
		zap.String("file", doc.FileName),
		zap.Float64("score", result.FinalScore),
		zap.String("recommendation", string(result.Recommendation)),
	)

	return result, nil
}

func failedResult(fileName, reason string) models.AnalysisResult {
	return models.AnalysisResult{
		FileName:      fileName,
		Failed:        true,
		FailureReason: reason,
	}
}
