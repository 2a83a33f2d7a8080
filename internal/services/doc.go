// Package services implements the business logic layer between the entry
// points and the pipeline packages.
//
// # Services
//
//	LoaderService     reads both inputs, merges them, replaces the stored
//	                  table and rewrites the flat export
//	DashboardService  runs the presenter pipeline and returns the views
//	HealthService     liveness, readiness and version reporting
//
// # Common Service Pattern
//
// Services receive their collaborators and a *slog.Logger through the
// constructor and take a context.Context on every blocking call:
//
//	svc := services.NewDashboardService(telemetry, logger)
//	dashboard, err := svc.Build(ctx, inputs, filter)
//
// Every run opens a trace span and records the pipeline metrics held by
// infrastructure.Telemetry. Errors are returned unchanged so callers can
// match MissingKeyError and InputMissingError with errors.As.
package services
