// Package session implements the line-oriented pinvault dialog.
//
// A Dispatcher is a state machine over five states:
//
//	AwaitingNewPin -> AwaitingPin -> AwaitingCommand <-> AwaitingName <-> AwaitingSecret
//
// Until a PIN exists every line that is not a command name becomes the PIN.
// Until the session is authenticated every line is a PIN attempt. After
// that, create/get/delete ask for their arguments on the following lines,
// and list/info answer at once. Authentication lasts for the process.
package session
