// Package cli implements the interactive command loop of the study client:
// account commands (signup, signin, signout), consent handling, sharing
// scope changes and the upload queue commands. It wires the application
// services together over the local SQLite database and the remote study
// service.
package cli
