// Package http implements the HTTP handlers of the interactive dashboard.
// Handlers stay thin: they parse the multipart upload, call the dashboard
// service and render the result.
//
// # Endpoints
//
//	POST /api/dashboard           view JSON for the uploaded files
//	POST /api/dashboard/workbook  the same views as an .xlsx attachment
//	POST /api/dashboard/sectors   sectors available to the filter
//	GET  /health, /health/ready, /health/live, /version
//	GET  /metrics                 prometheus exposition of the meter
//
// Every dashboard request carries two file parts, prices and sectors. The
// sector filter is a repeated sector field. Omitting the field leaves the
// filter unapplied; a single empty sector value selects nothing.
//
// # Error Handling
//
// All errors are RFC 7807 problem details:
//
//	{
//	    "type": "/errors/data/input-missing",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "required input not supplied: sectors",
//	    "instance": "/api/dashboard",
//	    "error_code": "INPUT_MISSING"
//	}
package http
