// Package app wires the interactive dashboard server: services, the chi
// router with its middleware chain, and the HTTP server lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from file, environment and flags
//	2. Initialize logging and OpenTelemetry
//	3. Create the dashboard and health services
//	4. Set up handlers and middleware
//	5. Serve until the context is cancelled
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger, telemetry, nil)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// # Graceful Shutdown
//
// Run returns once the context passed to it is cancelled (cmd/dashboard
// uses signal.NotifyContext). In-flight requests finish within the
// configured shutdown timeout and telemetry is flushed. The app never calls
// os.Exit; the main function controls the exit code.
package app
