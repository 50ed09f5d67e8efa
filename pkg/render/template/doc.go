// Package template defines the template engine seam used by the preview
// renderers and the web front end.
package template
