// Package cli implements credctl, the operator tool for credkeeper.
//
// Commands:
//
//	credctl verify -user NAME [-type password|api_token|verify_token]
//	credctl passwd -user NAME [-bootstrap]
//	credctl hash
//	credctl seal [-k KEY]
//
// Secrets are read without echo when stdin is a terminal and line by line
// otherwise, so the tool can be scripted.
package cli
