// Package template turns a template archive plus resolved option values
// and accumulated feature entries into files on a workspace.
package template
