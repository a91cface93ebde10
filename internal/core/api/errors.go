package api

import (
	"context"
	"errors"

	"golang.org/x/text/language"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/automata/internal/automation"
	"github.com/solatis/automata/internal/types"
)

// Error mapping:
//   configuration, format, lookup  -> InvalidArgument
//   cancelled                      -> Canceled (DeadlineExceeded on timeout)
//   dependency, internal           -> Internal
//   unknown automation             -> NotFound
//   store failures                 -> Unavailable
// Engine errors carry a google.protobuf.Struct detail with kind, title, path
// and field; the status message is localized.

// errorStatus converts an engine or request error to a gRPC status error.
func (s *Service) errorStatus(err error, tag language.Tag) error {
	switch {
	case errors.Is(err, types.ErrAutomationNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, types.ErrDefinitionTooLarge),
		errors.Is(err, types.ErrPayloadTooLarge),
		errors.Is(err, types.ErrTooManyVariables):
		return status.Error(codes.InvalidArgument, automation.Localize(err, tag))
	}

	te := types.AsError(err)
	st := status.New(codeFor(te), automation.Localize(te, tag))

	detail, derr := structpb.NewStruct(map[string]any{
		"kind":  te.Kind.String(),
		"title": te.Title,
		"path":  te.Path,
		"field": te.Field,
	})
	if derr != nil {
		return st.Err()
	}
	if withDetail, derr := st.WithDetails(protoadapt.MessageV1Of(detail)); derr == nil {
		st = withDetail
	}
	return st.Err()
}

func codeFor(e *types.Error) codes.Code {
	switch e.Kind {
	case types.KindConfiguration, types.KindFormat, types.KindLookup:
		return codes.InvalidArgument
	case types.KindCancelled:
		if errors.Is(e.Err, context.DeadlineExceeded) {
			return codes.DeadlineExceeded
		}
		return codes.Canceled
	default:
		return codes.Internal
	}
}

// storeError maps a store failure: unknown IDs are NotFound, everything
// else is Unavailable and counted.
func (s *Service) storeError(ctx context.Context, operation string, err error) error {
	if errors.Is(err, types.ErrAutomationNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	s.onStoreError(operation)
	s.logger.ErrorContext(ctx, "store operation failed", "operation", operation, "error", err)
	return status.Error(codes.Unavailable, "automation store unavailable")
}

func invalidRequest(format string, args ...any) error {
	return status.Errorf(codes.InvalidArgument, "invalid request: "+format, args...)
}

func internalError(format string, args ...any) error {
	return status.Errorf(codes.Internal, format, args...)
}
