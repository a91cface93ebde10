package api

import (
	"bytes"
	"encoding/json"
	"time"

	"golang.org/x/text/language"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/solatis/automata/internal/types"
)

// request is the union of all request documents. Raw members keep their
// exact JSON text.
type request struct {
	ID         string          `json:"id"`
	Definition json.RawMessage `json:"definition"`
	Condition  json.RawMessage `json:"condition"`
	Trigger    json.RawMessage `json:"trigger"`
	Variables  json.RawMessage `json:"variables"`
	Locale     string          `json:"locale"`
	Limit      int             `json:"limit"`
}

func decodeRequest(in *wrapperspb.StringValue) (*request, error) {
	var req request
	body := bytes.TrimSpace([]byte(in.GetValue()))
	if len(body) == 0 {
		return &req, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, invalidRequest("%v", err)
	}
	if dec.More() {
		return nil, invalidRequest("trailing data after request document")
	}
	return &req, nil
}

func (r *request) automationID() (types.AutomationID, error) {
	if r.ID == "" {
		return "", invalidRequest("id is required")
	}
	id, err := types.ParseAutomationID(r.ID)
	if err != nil {
		return "", invalidRequest("id %q is not a UUID", r.ID)
	}
	return id, nil
}

// language picks the request's locale, falling back to def.
func (r *request) language(def language.Tag) language.Tag {
	if r.Locale == "" {
		return def
	}
	tag, err := language.Parse(r.Locale)
	if err != nil {
		return def
	}
	return tag
}

func automationFields(a *types.Automation) map[string]any {
	return map[string]any{
		"id":          string(a.ID),
		"name":        a.Name,
		"description": a.Description,
		"definition":  a.Definition,
		"createdAt":   a.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt":   a.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func evaluationFields(e *types.Evaluation) map[string]any {
	m := map[string]any{
		"id":          string(e.ID),
		"elapsedUs":   e.ElapsedUs,
		"evaluatedAt": e.EvaluatedAt.UTC().Format(time.RFC3339Nano),
	}
	if e.Result.Valid {
		m["result"] = e.Result.Bool
	}
	if e.ErrorTitle.Valid {
		m["errorTitle"] = e.ErrorTitle.String
		m["errorPath"] = e.ErrorPath.String
	}
	return m
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, internalError("encode response: %v", err)
	}
	return out, nil
}
