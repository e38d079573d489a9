package services

import (
	"context"
	"log/slog"

	"github.com/nkko/flowvault/pkg/expression"
	"github.com/nkko/flowvault/pkg/lint"
	"github.com/nkko/flowvault/pkg/models"
	"github.com/nkko/flowvault/pkg/validation"
)

// Integrity exposes the static analysis operations: structural validation,
// expression validation, linting and improvement suggestions. Findings come
// back as reports, never as errors.
type Integrity struct {
	validator *validation.Validator
	logger    *slog.Logger
}

// NewIntegrity creates the integrity service.
func NewIntegrity(validator *validation.Validator, logger *slog.Logger) *Integrity {
	return &Integrity{
		validator: validator,
		logger:    logger,
	}
}

// ValidateStructure runs the full structural check suite over a workflow.
func (i *Integrity) ValidateStructure(ctx context.Context, workflow *models.Workflow) (*models.ValidationResult, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	result := i.validator.ValidateStructure(ctx, workflow)

	if !result.Valid {
		i.logger.DebugContext(ctx, "Workflow failed structural validation",
			"workflow", workflow.Name, "errors", len(result.Errors), "warnings", len(result.Warnings))
	}

	return &result, nil
}

// ValidateExpressions sweeps all embedded {{ ... }} expressions in the
// workflow's node parameters.
func (i *Integrity) ValidateExpressions(_ context.Context, workflow *models.Workflow) (*models.ValidationResult, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	result := expression.ValidateWorkflow(workflow)

	return &result, nil
}

// Lint scores the workflow against the heuristic quality checks.
func (i *Integrity) Lint(_ context.Context, workflow *models.Workflow) (*models.LintReport, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	report := lint.Lint(workflow)

	return &report, nil
}

// SuggestImprovements runs the advisor passes over the workflow.
func (i *Integrity) SuggestImprovements(_ context.Context, workflow *models.Workflow) (*models.SuggestionReport, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	report := lint.SuggestImprovements(workflow)

	return &report, nil
}
