// Package ux remembers interactive-shell state between sessions: the last
// contacts file and message draft, and whether the help screen was shown.
//
// Nothing here affects a send. Runs always start from the file and message
// visible in the shell.
package ux
