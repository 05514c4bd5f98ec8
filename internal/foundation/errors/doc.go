// Package errors provides the classified error primitives used across docrender.
//
// Errors carry a category (config, theme, template, filesystem, ...), a severity and
// free-form context, and are built through a fluent builder:
//
//	err := errors.ThemeError("theme not found").
//		WithContext("theme", name).
//		WithCause(statErr).
//		Build()
//
// Sentinels built once at package level compare with errors.Is on category and message,
// so a wrapped or context-enriched copy still matches its sentinel.
package errors
