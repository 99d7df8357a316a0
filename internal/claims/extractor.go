// Package claims extracts verifiable claims from candidate answers,
// scores them for verification priority, detects red-flag patterns, and
// checks new answers for contradictions against earlier statements.
package claims

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/internai/interviewd/internal/gateway"
	"github.com/internai/interviewd/internal/observe"
	"github.com/internai/interviewd/internal/prompt"
	"github.com/internai/interviewd/internal/session"
)

// verificationPriorityFloor marks a claim for verification on priority
// alone, regardless of verifiability.
const verificationPriorityFloor = 7

// Extractor pulls structured claims out of answers via the LLM gateway.
// Safe for concurrent use.
type Extractor struct {
	gw      *gateway.Gateway
	metrics *observe.Metrics
}

// NewExtractor returns an Extractor. metrics may be nil.
func NewExtractor(gw *gateway.Gateway, metrics *observe.Metrics) *Extractor {
	return &Extractor{gw: gw, metrics: metrics}
}

// Extract returns the claims found in one answer. A down backend yields
// no claims and no error: claim extraction is advisory and must never
// block answer processing. Only context cancellation propagates.
func (e *Extractor) Extract(ctx context.Context, questionID, question, answer string, history []prompt.QA) ([]session.Claim, error) {
	raw, err := e.gw.Chat(ctx, prompt.ClaimExtraction(question, answer, history))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, gateway.ErrBackendUnavailable) {
			slog.Warn("claim extraction skipped, llm unavailable", "question_id", questionID)
			return nil, nil
		}
		return nil, err
	}

	claims := ParseClaims(raw, questionID)
	for i := range claims {
		DetectRedFlags(&claims[i])
		claims[i].RequiresVerification = requiresVerification(&claims[i])
		if e.metrics != nil {
			e.metrics.RecordClaim(ctx, string(claims[i].Verifiability))
		}
	}
	return claims, nil
}

// ParseClaims parses the extraction output: claim blocks separated by
// "---", each a KEY: value block. Malformed blocks degrade to defaults;
// blocks without a CLAIM line are dropped.
func ParseClaims(raw, questionID string) []session.Claim {
	cleaned := prompt.StripMarkdown(raw)
	if strings.Contains(cleaned, prompt.NoClaimsMarker) {
		return nil
	}

	var claims []session.Claim
	for _, block := range strings.Split(cleaned, prompt.ClaimSeparator) {
		c := session.Claim{
			Type:          session.ClaimTechnicalAchievement,
			Verifiability: session.VerifiabilityVerifiable,
			Priority:      5,
			QuestionID:    questionID,
		}

		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case has(line, "CLAIM"):
				c.Text, _ = prompt.Field(line, "CLAIM")
			case has(line, "TYPE"):
				v, _ := prompt.Field(line, "TYPE")
				if t := session.ClaimType(strings.ToLower(v)); t.IsValid() {
					c.Type = t
				}
			case has(line, "VERIFIABILITY"):
				v, _ := prompt.Field(line, "VERIFIABILITY")
				if vf := session.Verifiability(strings.ToLower(v)); vf.IsValid() {
					c.Verifiability = vf
				}
			case has(line, "PRIORITY"):
				v, _ := prompt.Field(line, "PRIORITY")
				c.Priority = prompt.IntInRange(v, 1, 10, 5)
			case strings.HasPrefix(line, "VERIFICATION_QUESTION"):
				if _, q, ok := strings.Cut(line, ":"); ok {
					if q = strings.TrimSpace(q); q != "" {
						c.VerificationQuestions = append(c.VerificationQuestions, q)
					}
				}
			case has(line, "RED_FLAG"):
				if v, _ := prompt.Field(line, "RED_FLAG"); !prompt.IsNone(v) {
					c.RedFlags = append(c.RedFlags, v)
				}
			}
		}

		if c.Text == "" {
			continue
		}
		c.ID = fmt.Sprintf("%s-c%d", questionID, len(claims))
		claims = append(claims, c)
	}
	return claims
}

// has reports whether line carries the given KEY: field.
func has(line, key string) bool {
	_, ok := prompt.Field(line, key)
	return ok
}

// requiresVerification applies the fixed rule: anything not cleanly
// verifiable, anything high priority, anything with red flags.
func requiresVerification(c *session.Claim) bool {
	return c.Verifiability != session.VerifiabilityVerifiable ||
		c.Priority >= verificationPriorityFloor ||
		len(c.RedFlags) > 0
}
