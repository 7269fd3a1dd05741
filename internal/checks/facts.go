package checks

import (
	"go/ast"
)

// errState keeps what has been done with an error variable within a statement list.
type errState struct {
	takenCare *bool
	at        ast.Node
}

type takenCareStatus int

const (
	takenCareOK takenCareStatus = iota
	takenCareAlreadyReturned
	takenCareAlreadyLogged
)

// setTakenCare marks a variable as it was taken care of at the given node. The isReturned
// thing sets it to returned (true), or logged (false).
//
// Possible issues are:
//
//   - Logging and returning must not intermix.
//   - Logging can be done only once.
//
// The node of the first care is kept on failures, so it can be referred to.
func (s *errState) setTakenCare(isReturned bool, at ast.Node) takenCareStatus {
	if s.takenCare != nil {
		if *s.takenCare {
			return takenCareAlreadyReturned
		}

		return takenCareAlreadyLogged
	}

	s.takenCare = &isReturned
	s.at = at
	return takenCareOK
}

// logsErrorFact marks functions logging their error parameter. Calling them counts as logging.
type logsErrorFact struct{}

func (*logsErrorFact) AFact() {}

func (*logsErrorFact) String() string { return "logsError" }
