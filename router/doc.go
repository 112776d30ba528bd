// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Simple Survey server.

# Route Registration

Routes returns the route table; NewRouter registers it on a ServeMux and
serves the API documentation built from the same table:

	mux := router.NewRouter(db, cfg, def)

Every route is wrapped in middleware.WithLogging. Admin routes are also
wrapped in middleware.RequireAdmin.

# Endpoints

Participant pages:

	GET /             - Landing page
	GET /s/{token}    - Survey page
	GET /thank-you    - Thank-you page

Participant API:

	GET  /api/survey/{token}    - Survey and current response
	POST /api/responses/{token} - Submit (or update) a response
	PUT  /api/responses/{token} - Update a response
	GET  /api/responses/{token} - Current response

Admin (Authorization: Bearer <ADMIN_TOKEN>):

	GET    /api/admin/participants         - List participants
	POST   /api/admin/participants         - Create participant
	GET    /api/admin/participants/{token} - Get participant
	PUT    /api/admin/participants/{token} - Update label
	DELETE /api/admin/participants/{token} - Delete participant and response
	GET    /api/admin/responses            - Export (?format=json|csv)

Operational:

	GET /health             - Health check
	GET /docs/              - Swagger UI
	GET /docs/openapi.json  - OpenAPI 3.0.3 document

Any other path answers the ServeMux 404.
*/
package router
