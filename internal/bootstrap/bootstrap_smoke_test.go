package bootstrap

import (
	"reflect"
	"testing"
)

func TestInitStepOrder(t *testing.T) {
	want := []string{
		"config:load",
		"logging:init",
		"storage:open",
		"token:init",
		"voiceprint:init",
		"speech:init",
		"voiceout:init",
		"auth:init",
		"commands:init",
		"web:init",
	}
	if got := Describe(); !reflect.DeepEqual(got, want) {
		t.Fatalf("init order = %v, want %v", got, want)
	}
}

func TestInitStepsHaveExecutors(t *testing.T) {
	for _, step := range initSteps() {
		if step.Execute == nil {
			t.Fatalf("step %s has no executor", step.ID)
		}
		if step.Kind == "" {
			t.Fatalf("step %s has no error kind", step.ID)
		}
	}
}
