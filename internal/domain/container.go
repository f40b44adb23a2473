package domain

import (
	"log"
	"strings"
)

// ContainerKind is the visual grouping mode for rendered quizzes.
type ContainerKind string

const (
	// ContainerVertical stacks all quizzes, everything visible. This is the
	// system default.
	ContainerVertical ContainerKind = "vertical"
	// ContainerAccordion collapses quizzes, one focused at a time.
	ContainerAccordion ContainerKind = "accordion"
)

// ParseContainer maps a document container name onto a kind. Documents use
// "none" for the plain vertical stack. Empty input means "not set".
func ParseContainer(name string) (ContainerKind, bool) {
	switch strings.ToLower(name) {
	case "accordion":
		return ContainerAccordion, true
	case "none", "vertical":
		return ContainerVertical, true
	default:
		return "", false
	}
}

// ResolveContainer picks the effective container for one quiz. Precedence:
// caller override, then the quiz's own setting, then the set default. An
// unrecognized name fails closed to vertical with a warning; it never aborts
// rendering.
func ResolveContainer(override string, quiz Quiz, set QuizSet) ContainerKind {
	for _, name := range []string{override, quiz.Container, set.Container} {
		if name == "" {
			continue
		}
		kind, ok := ParseContainer(name)
		if !ok {
			log.Printf("unknown container %q, falling back to %s", name, ContainerVertical)
			return ContainerVertical
		}
		return kind
	}
	return ContainerVertical
}
