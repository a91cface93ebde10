package api

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/text/language"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/solatis/automata/internal/provider"
	"github.com/solatis/automata/internal/types"
)

// EvaluateAutomation evaluates a stored automation and records the outcome
// in its evaluation log.
// Request: {"id": uuid, "trigger"?: any, "variables"?: {...}, "locale"?: tag}
// Response: {"result": bool, "evaluationId": uuid}
func (s *Service) EvaluateAutomation(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	req, err := decodeRequest(in)
	if err != nil {
		return nil, err
	}
	id, err := req.automationID()
	if err != nil {
		return nil, err
	}
	tag := req.language(s.locale)

	data, err := s.dataContext(req, tag)
	if err != nil {
		return nil, err
	}

	compiled, err := s.compiled(ctx, id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, evalErr := compiled.Evaluate(ctx, data)
	ev := &types.Evaluation{
		ID:           types.NewEvaluationID(),
		AutomationID: id,
		ElapsedUs:    time.Since(start).Microseconds(),
	}
	if evalErr != nil {
		te := types.AsError(evalErr)
		ev.ErrorTitle = sql.NullString{String: te.Title, Valid: true}
		ev.ErrorPath = sql.NullString{String: te.Path, Valid: true}
	} else {
		ev.Result = sql.NullBool{Bool: result, Valid: true}
	}

	// The outcome stands even if the log write fails; the caller still
	// gets it, the failure is counted and logged.
	if err := s.store.RecordEvaluation(context.WithoutCancel(ctx), ev); err != nil {
		_ = s.storeError(ctx, "record_evaluation", err)
	}

	if evalErr != nil {
		s.logger.InfoContext(ctx, "automation evaluation failed",
			"automation_id", id, "evaluation_id", ev.ID, "title", ev.ErrorTitle.String)
		return nil, s.errorStatus(evalErr, tag)
	}

	s.logger.DebugContext(ctx, "automation evaluated",
		"automation_id", id, "evaluation_id", ev.ID, "result", result)
	return newStruct(map[string]any{
		"result":       result,
		"evaluationId": string(ev.ID),
	})
}

// EvaluateCondition compiles and evaluates an ad-hoc condition without
// storing anything.
// Request: {"condition": ..., "trigger"?: any, "variables"?: {...}, "locale"?: tag}
// Response: {"result": bool}
func (s *Service) EvaluateCondition(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	req, err := decodeRequest(in)
	if err != nil {
		return nil, err
	}
	if len(req.Condition) == 0 {
		return nil, invalidRequest("condition is required")
	}
	tag := req.language(s.locale)

	compiled, err := s.engine.CompileCondition(req.Condition)
	if err != nil {
		return nil, s.errorStatus(err, tag)
	}
	data, err := s.dataContext(req, tag)
	if err != nil {
		return nil, err
	}

	result, err := compiled.Evaluate(ctx, data)
	if err != nil {
		return nil, s.errorStatus(err, tag)
	}
	return newStruct(map[string]any{"result": result})
}

// ListEvaluations returns an automation's evaluation log, newest first.
// Request: {"id": uuid, "limit"?: n}
func (s *Service) ListEvaluations(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	req, err := decodeRequest(in)
	if err != nil {
		return nil, err
	}
	id, err := req.automationID()
	if err != nil {
		return nil, err
	}

	list, err := s.store.ListEvaluations(ctx, id, req.Limit)
	if err != nil {
		return nil, s.storeError(ctx, "list_evaluations", err)
	}

	items := make([]any, len(list))
	for i := range list {
		items[i] = evaluationFields(&list[i])
	}
	return newStruct(map[string]any{"evaluations": items})
}

// dataContext parses the trigger and variables of req. Errors are gRPC
// status errors.
func (s *Service) dataContext(req *request, tag language.Tag) (provider.DataContext, error) {
	data, err := provider.ParseDataContext(req.Trigger, req.Variables)
	switch {
	case errors.Is(err, types.ErrPayloadTooLarge), errors.Is(err, types.ErrTooManyVariables):
		return nil, s.errorStatus(err, tag)
	case err != nil:
		return nil, invalidRequest("%v", err)
	}
	return data, nil
}
