// SPDX-License-Identifier: MIT

// Package docs builds and serves the OpenAPI description of the snippets API.
package docs

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	Title       = "Snippet App API"
	Description = "API for code snippet application"
	Version     = "0.1"
	Tag         = "snippet"
	systemTag   = "system"
)

// Prefix normalizes an API prefix to "/<prefix>", or "" when empty.
func Prefix(apiPrefix string) string {
	p := strings.Trim(apiPrefix, "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

// NewDocument describes the routes served under apiPrefix and validates the
// result.
func NewDocument(ctx context.Context, apiPrefix string) (*openapi3.T, error) {
	base := Prefix(apiPrefix)
	root := base
	if root == "" {
		root = "/"
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       Title,
			Description: Description,
			Version:     Version,
		},
		Tags: openapi3.Tags{
			&openapi3.Tag{Name: Tag},
			&openapi3.Tag{Name: systemTag, Description: "Probes and service metadata"},
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath(root, &openapi3.PathItem{Get: infoOperation()}),
			openapi3.WithPath(path.Join(root, "config"), &openapi3.PathItem{Get: configOperation()}),
			openapi3.WithPath("/healthz", &openapi3.PathItem{Get: probeOperation("getHealth", "Liveness probe", false)}),
			openapi3.WithPath("/readyz", &openapi3.PathItem{Get: probeOperation("getReady", "Readiness probe", true)}),
		),
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi document invalid: %w", err)
	}
	return doc, nil
}

func jsonResponse(desc string, schema *openapi3.Schema) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(desc).WithJSONSchema(schema)}
}

func infoOperation() *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = "getServiceInfo"
	op.Summary = "Service name, version and environment"
	op.Tags = []string{Tag}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(200, jsonResponse("Service information", openapi3.NewObjectSchema().
			WithProperty("name", openapi3.NewStringSchema()).
			WithProperty("version", openapi3.NewStringSchema()).
			WithProperty("env", openapi3.NewStringSchema().WithEnum("development", "production", "test")))),
	)
	return op
}

func configOperation() *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = "getEffectiveConfig"
	op.Summary = "Effective configuration with sensitive values masked"
	op.Description = "Only served outside production."
	op.Tags = []string{Tag}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(200, jsonResponse("Configuration values keyed by section.field",
			openapi3.NewObjectSchema().WithAnyAdditionalProperties())),
		openapi3.WithStatus(404, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Disabled in production")}),
	)
	return op
}

func probeOperation(id, summary string, mayFail bool) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	op.Tags = []string{systemTag}

	status := openapi3.NewObjectSchema().
		WithProperty("status", openapi3.NewStringSchema().WithEnum("healthy", "degraded", "unhealthy")).
		WithProperty("timestamp", openapi3.NewDateTimeSchema())

	opts := []openapi3.NewResponsesOption{openapi3.WithStatus(200, jsonResponse(summary+" passed", status))}
	if mayFail {
		opts = append(opts, openapi3.WithStatus(503, jsonResponse("Not ready", status)))
	}
	op.Responses = openapi3.NewResponses(opts...)
	return op
}
