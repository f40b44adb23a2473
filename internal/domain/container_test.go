package domain

import "testing"

func TestResolveContainerPrecedence(t *testing.T) {
	set := QuizSet{Container: "accordion"}

	cases := []struct {
		name     string
		override string
		quiz     Quiz
		want     ContainerKind
	}{
		{name: "set default applies", quiz: Quiz{}, want: ContainerAccordion},
		{name: "quiz override beats set", quiz: Quiz{Container: "none"}, want: ContainerVertical},
		{name: "call override beats quiz", override: "none", quiz: Quiz{Container: "accordion"}, want: ContainerVertical},
		{name: "unrecognized fails closed", quiz: Quiz{Container: "carousel"}, want: ContainerVertical},
		{name: "vertical accepted as alias", quiz: Quiz{Container: "vertical"}, want: ContainerVertical},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveContainer(tc.override, tc.quiz, set)
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestResolveContainerSystemDefault(t *testing.T) {
	if got := ResolveContainer("", Quiz{}, QuizSet{}); got != ContainerVertical {
		t.Fatalf("expected vertical default, got %s", got)
	}
}
