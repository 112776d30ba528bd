// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apidoc

import (
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	Title          = "Simple Survey API"
	Version        = "1.0.0"
	OpenAPIVersion = "3.0.3"

	securityScheme = "BearerAuth"
)

// Route is one entry of the route table. The same table registers the
// handlers on the mux and produces the OpenAPI document.
type Route struct {
	Method  string
	Path    string
	Summary string
	Tag     string
	Admin   bool
	// Body marks operations that read a JSON request body.
	Body bool
	// Responses maps status codes to descriptions.
	Responses map[int]string
	// HTML routes are registered but left out of the document.
	HTML    bool
	Handler http.HandlerFunc
}

// Pattern is the ServeMux pattern for the route.
func (r Route) Pattern() string {
	return r.Method + " " + r.Path
}

var pathParam = regexp.MustCompile(`\{([a-zA-Z_]+)\}`)

// Build produces the document for routes. HTML routes are skipped.
func Build(routes []Route) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: OpenAPIVersion,
		Info:    &openapi3.Info{Title: Title, Version: Version},
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			SecuritySchemes: openapi3.SecuritySchemes{
				securityScheme: &openapi3.SecuritySchemeRef{
					Value: openapi3.NewSecurityScheme().WithType("http").WithScheme("bearer"),
				},
			},
		},
	}

	for _, rt := range routes {
		if rt.HTML {
			continue
		}

		path := strings.TrimSuffix(rt.Path, "{$}")
		item := doc.Paths.Value(path)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(path, item)
		}
		item.SetOperation(rt.Method, operation(rt))
	}

	return doc
}

func operation(rt Route) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.Summary = rt.Summary
	op.OperationID = operationID(rt)
	if rt.Tag != "" {
		op.Tags = []string{rt.Tag}
	}

	for _, m := range pathParam.FindAllStringSubmatch(rt.Path, -1) {
		param := openapi3.NewPathParameter(m[1]).WithSchema(openapi3.NewStringSchema())
		op.AddParameter(param)
	}

	if rt.Body {
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema()),
		}
	}

	responses := make(map[int]string, len(rt.Responses)+1)
	for code, desc := range rt.Responses {
		responses[code] = desc
	}
	if rt.Admin {
		requirements := openapi3.NewSecurityRequirements().
			With(openapi3.NewSecurityRequirement().Authenticate(securityScheme))
		op.Security = requirements
		responses[http.StatusUnauthorized] = "Missing or invalid admin token"
	}
	if len(responses) == 0 {
		responses[http.StatusOK] = http.StatusText(http.StatusOK)
	}

	codes := make([]int, 0, len(responses))
	for code := range responses {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	opts := make([]openapi3.NewResponsesOption, 0, len(codes))
	for _, code := range codes {
		opts = append(opts, openapi3.WithStatus(code, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription(responses[code]),
		}))
	}
	op.Responses = openapi3.NewResponses(opts...)

	return op
}

// operationID turns "GET /api/admin/participants/{token}" into
// "getApiAdminParticipantsToken".
func operationID(rt Route) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(rt.Method))
	for _, part := range strings.FieldsFunc(rt.Path, func(r rune) bool {
		return r == '/' || r == '{' || r == '}' || r == '-' || r == '$'
	}) {
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	return b.String()
}

// SortedPaths returns the documented paths in sorted order.
func SortedPaths(doc *openapi3.T) []string {
	paths := make([]string, 0, doc.Paths.Len())
	for p := range doc.Paths.Map() {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
