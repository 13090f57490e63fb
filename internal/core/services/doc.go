// Package services implements the driving port interfaces.
//
// IngestService runs the chunk, embed and persist pipeline for one document
// per call. SettingsService reads configuration and overlays secrets from the
// environment. Both talk to the outside world only through driven ports.
package services
