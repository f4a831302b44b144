package validate

import "fmt"

// Stage is the progress of a single validation. Stages only move forward;
// a failure ends the validation at the stage last reached.
type Stage int

const (
	StageIdle Stage = iota
	StageSyntaxChecked
	StageExecuted
	StageNormalized
	StageCompared
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageSyntaxChecked:
		return "syntax_checked"
	case StageExecuted:
		return "executed"
	case StageNormalized:
		return "normalized"
	case StageCompared:
		return "compared"
	case StageDone:
		return "done"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Names of the steps recorded on failures.
const (
	stepSyntaxCheck = "syntax_check"
	stepExecute     = "execute"
)
