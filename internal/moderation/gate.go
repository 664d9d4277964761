package moderation

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Decision is the gate's outcome for a candidate mutation.
type Decision string

const (
	DecisionAllow           Decision = "allow"
	DecisionAllowWithReview Decision = "allow_with_review"
	DecisionBlock           Decision = "block"
)

// User-facing block reasons, selected by tier priority.
const (
	ReasonGuidelines  = "This content violates our community guidelines and cannot be posted."
	ReasonHarmfulLink = "This content was flagged as a potentially harmful link and cannot be posted."
	ReasonFlagged     = "This content was flagged for review and cannot be posted."
)

// Result is the gate decision plus supporting detail. Subject is the
// concatenated text that was moderated, empty when moderation was skipped.
type Result struct {
	Decision Decision
	Reason   string
	Subject  string
	Verdict  *Verdict
}

// Actor identifies who is attempting the mutation.
type Actor struct {
	UserID string
	Email  string
}

// Gate runs candidate profile text through the moderation pipeline and
// maps the verdict to an allow/review/block decision. Pipeline failure is
// converted to an allow: a profile field update is low severity and
// moderation-infrastructure unavailability must not block it. That policy
// holds for the profile workflow only.
type Gate struct {
	pipeline Pipeline
	workflow string
	logger   *zap.Logger
}

// NewGate builds a gate bound to the profile workflow.
func NewGate(pipeline Pipeline, logger *zap.Logger) *Gate {
	return &Gate{pipeline: pipeline, workflow: "profile", logger: logger}
}

// Evaluate moderates the present text-bearing fields. When none are
// present the mutation is allowed without a pipeline call.
func (g *Gate) Evaluate(ctx context.Context, fields []string, actor Actor) Result {
	subject := joinPresent(fields)
	if subject == "" {
		return Result{Decision: DecisionAllow}
	}

	result := Result{Subject: subject}
	verdict, err := g.pipeline.Moderate(ctx, Request{
		Type:      "text",
		Text:      subject,
		UserID:    actor.UserID,
		UserEmail: actor.Email,
		ContentID: "profile-" + actor.UserID,
		Workflow:  g.workflow,
	})
	if err != nil {
		g.logger.Warn("moderation pipeline unavailable, allowing profile update",
			zap.String("user_id", actor.UserID),
			zap.Error(err))
		result.Decision = DecisionAllow
		return result
	}

	result.Verdict = verdict
	switch {
	case !verdict.Allowed:
		result.Decision = DecisionBlock
		result.Reason = blockReason(verdict)
	case verdict.NeedsReview:
		result.Decision = DecisionAllowWithReview
	default:
		result.Decision = DecisionAllow
	}
	return result
}

// blockReason picks the user-facing message. Tier-1 policy matches take
// precedence over tier-2 risk heuristics when both are present.
func blockReason(verdict *Verdict) string {
	if verdict.Tier1 != nil && len(verdict.Tier1.Matches) > 0 {
		return ReasonGuidelines
	}
	if verdict.Tier2 != nil && len(verdict.Tier2.Issues) > 0 {
		return ReasonHarmfulLink
	}
	return ReasonFlagged
}

func joinPresent(fields []string) string {
	present := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			present = append(present, f)
		}
	}
	return strings.Join(present, " ")
}
