package api

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/solatis/automata/internal/types"
)

// SaveAutomation compiles a definition and stores it. Without an id a new
// automation is created; with one the existing automation is replaced.
// Request: {"id"?: uuid, "definition": {...}, "locale"?: tag}
func (s *Service) SaveAutomation(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	req, err := decodeRequest(in)
	if err != nil {
		return nil, err
	}
	if len(req.Definition) == 0 {
		return nil, invalidRequest("definition is required")
	}

	// Compile before storing so only valid automations are persisted.
	compiled, err := s.engine.Compile(req.Definition)
	if err != nil {
		return nil, s.errorStatus(err, req.language(s.locale))
	}

	a := &types.Automation{
		Name:        compiled.Name,
		Description: compiled.Description,
		Definition:  string(req.Definition),
	}
	if req.ID != "" {
		if a.ID, err = req.automationID(); err != nil {
			return nil, err
		}
	}

	if err := s.store.SaveAutomation(ctx, a); err != nil {
		return nil, s.storeError(ctx, "save", err)
	}
	s.cache.Store(a.ID, &cachedAutomation{updatedAt: a.UpdatedAt, compiled: compiled})

	s.logger.InfoContext(ctx, "automation saved", "automation_id", a.ID, "name", a.Name)
	return newStruct(automationFields(a))
}

// GetAutomation returns a stored automation.
// Request: {"id": uuid}
func (s *Service) GetAutomation(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	req, err := decodeRequest(in)
	if err != nil {
		return nil, err
	}
	id, err := req.automationID()
	if err != nil {
		return nil, err
	}

	a, err := s.store.GetAutomation(ctx, id)
	if err != nil {
		return nil, s.storeError(ctx, "get", err)
	}
	return newStruct(automationFields(a))
}

// ListAutomations returns stored automations ordered by ID.
// Request: {"limit"?: n}
func (s *Service) ListAutomations(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	req, err := decodeRequest(in)
	if err != nil {
		return nil, err
	}

	list, err := s.store.ListAutomations(ctx, req.Limit)
	if err != nil {
		return nil, s.storeError(ctx, "list", err)
	}

	items := make([]any, len(list))
	for i := range list {
		items[i] = automationFields(&list[i])
	}
	return newStruct(map[string]any{"automations": items})
}

// DeleteAutomation removes an automation and its evaluation log.
// Request: {"id": uuid}
func (s *Service) DeleteAutomation(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	req, err := decodeRequest(in)
	if err != nil {
		return nil, err
	}
	id, err := req.automationID()
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteAutomation(ctx, id); err != nil {
		return nil, s.storeError(ctx, "delete", err)
	}
	s.cache.Delete(id)

	s.logger.InfoContext(ctx, "automation deleted", "automation_id", id)
	return newStruct(map[string]any{"id": string(id)})
}
