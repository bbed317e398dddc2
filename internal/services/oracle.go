package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"cvscreener/internal/models"
	"cvscreener/internal/retry"
)

type OracleErrorKind string

const (
	OracleTimeout      OracleErrorKind = "timeout"
	OracleRateLimited  OracleErrorKind = "rate_limited"
	OracleMalformed    OracleErrorKind = "malformed_response"
	OracleUnauthorized OracleErrorKind = "unauthorized"
	OracleUnknown      OracleErrorKind = "unknown"
)

// OracleError classifies a failed oracle interaction. Timeout,
// RateLimited and Unknown are retried; Unauthorized never is, and a
// malformed response consumes the reparse budget instead of the
// network one.
type OracleError struct {
	Kind OracleErrorKind
	Err  error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle %s: %v", e.Kind, e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}

// OracleClient invokes the remote scoring oracle for one criterion.
// It degrades to a fallback CriterionScore (raw 0, Fallback=true) when
// the oracle cannot produce a usable result; the only errors it
// surfaces are Unauthorized (fatal for the whole batch) and caller
// cancellation.
type OracleClient interface {
	Evaluate(ctx context.Context, req models.EvaluationRequest) (models.CriterionScore, error)
}

type oracleClient struct {
	generator     TextGenerator
	policy        retry.Policy
	limiter       *rate.Limiter
	timeout       time.Duration
	parseAttempts int
	logger        *zap.Logger
}

// Reparse budget: fresh oracle calls allowed when a response parses
// badly, distinct from the network retry budget.
const defaultParseAttempts = 2

const logPreviewLen = 200

func NewOracleClient(
	generator TextGenerator,
	policy retry.Policy,
	limiter *rate.Limiter,
	timeout time.Duration,
	logger *zap.Logger,
) OracleClient {
	return &oracleClient{
		generator:     generator,
		policy:        policy,
		limiter:       limiter,
		timeout:       timeout,
		parseAttempts: defaultParseAttempts,
		logger:        logger,
	}
}

func (c *oracleClient) Evaluate(ctx context.Context, req models.EvaluationRequest) (models.CriterionScore, error) {
	// One deadline covers the full call including backoff sleeps, so a
	// slow oracle cannot stretch a single criterion indefinitely.
	callCtx := ctx
	var cancel context.CancelFunc
	if c.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var lastErr error

	for attempt := 1; attempt <= c.parseAttempts; attempt++ {
		raw, err := c.generate(callCtx, req.Prompt)
		if err != nil {
			var oerr *OracleError
			if errors.As(err, &oerr) && oerr.Kind == OracleUnauthorized {
				return models.CriterionScore{}, err
			}
			if ctx.Err() != nil {
				// The batch was cancelled, not the per-call deadline.
				return models.CriterionScore{}, ctx.Err()
			}
			lastErr = err
			// Network budget is spent; re-entering the loop would only
			// repeat the same exhausted retries.
			break
		}

		score, perr := parseCriterionScore(req.Criterion, raw)
		if perr == nil {
			return score, nil
		}

		lastErr = &OracleError{Kind: OracleMalformed, Err: perr}
		c.logger.Warn("oracle returned unparseable response",
			zap.String("criterion", string(req.Criterion)),
			zap.Int("parse_attempt", attempt),
			zap.String("response_preview", truncateForLog(raw, logPreviewLen)),
			zap.Error(perr),
		)
	}

	c.logger.Warn("criterion degraded to fallback score",
		zap.String("criterion", string(req.Criterion)),
		zap.Error(lastErr),
	)

	return models.CriterionScore{
		Criterion:     req.Criterion,
		RawScore:      0,
		Justification: fmt.Sprintf("Criterion could not be scored by the oracle: %v. A neutral score of 0 was applied.", lastErr),
		Fallback:      true,
	}, nil
}

// generate performs one oracle round trip under the retry policy and
// the shared rate-limit gate.
func (c *oracleClient) generate(ctx context.Context, prompt string) (string, error) {
	var response string

	err := c.policy.Do(ctx, func(ctx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return classifyOracleError(err)
			}
		}

		raw, err := c.generator.GenerateContent(ctx, prompt)
		if err != nil {
			oerr := classifyOracleError(err)
			switch oerr.Kind {
			case OracleTimeout, OracleRateLimited, OracleUnknown:
				return retry.RetryableError(oerr)
			default:
				return oerr
			}
		}

		response = raw
		return nil
	})
	if err != nil {
		return "", err
	}

	return response, nil
}

// classifyOracleError maps transport failures onto the oracle taxonomy.
// The Gemini SDK does not expose stable sentinel errors for quota and
// auth failures, so classification falls back to status markers in the
// message, the same markers the API embeds in its error strings.
func classifyOracleError(err error) *OracleError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &OracleError{Kind: OracleTimeout, Err: err}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "quota"),
		strings.Contains(msg, "resource exhausted"):
		return &OracleError{Kind: OracleRateLimited, Err: err}
	case strings.Contains(msg, "401"),
		strings.Contains(msg, "403"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "unauthenticated"),
		strings.Contains(msg, "permission denied"),
		strings.Contains(msg, "api key not valid"):
		return &OracleError{Kind: OracleUnauthorized, Err: err}
	case strings.Contains(msg, "deadline exceeded"),
		strings.Contains(msg, "timeout"):
		return &OracleError{Kind: OracleTimeout, Err: err}
	default:
		return &OracleError{Kind: OracleUnknown, Err: err}
	}
}

// parseCriterionScore extracts the numeric score and justification from
// the oracle's response. Out-of-range scores are clamped into [0,100];
// a missing numeric score is a malformed response.
func parseCriterionScore(criterion models.Criterion, raw string) (models.CriterionScore, error) {
	payload := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return models.CriterionScore{}, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	score, ok := coerceScore(data["score"])
	if !ok {
		return models.CriterionScore{}, fmt.Errorf("response has no parseable numeric score")
	}

	justification, _ := data["justification"].(string)

	return models.CriterionScore{
		Criterion:     criterion,
		RawScore:      clampScore(score),
		Justification: strings.TrimSpace(justification),
	}, nil
}

// extractJSON pulls a JSON object out of text the oracle may have
// wrapped in markdown fences or prose.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}

func coerceScore(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}

func truncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
