// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// Services receive their dependencies through constructor injection and
// depend only on domain entities and store interfaces, never on specific
// infrastructure implementations. Expected failures surface as sentinel
// errors so the API layer can map them to HTTP status codes with errors.Is.
package service
