// Package types defines the navigation, site configuration, and resource
// metadata entities, the Backend and Service interfaces, and the standard
// error types for the NavSphere storage core.
package types
