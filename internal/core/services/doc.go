// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters): ingestion, context composition,
// translation, chat and store maintenance.
//
// Services depend only on ports, the logger, the metrics collectors
// and the shared worker pool.
package services
