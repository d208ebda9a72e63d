// Package plugin defines the contract between the task runner and the
// plugins it drives: registration metadata, typed configuration decoding,
// and the input/modify/output phase handlers.
//
// A Registry is built once at startup and passed around explicitly. Aliases
// share the target's handlers and differ only in name and deprecation notice.
package plugin
