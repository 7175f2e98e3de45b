package transition

// Step identifies one write of the executor. Steps run in ascending order.
type Step int

const (
	StepGraduate Step = iota + 1
	StepPromote
	StepEnroll
	StepMarkEnrolled
	StepResetAssignments
	StepAdvanceYear
)

// StepCount is the number of executor steps.
const StepCount = int(StepAdvanceYear)

var stepNames = map[Step]string{
	StepGraduate:         "graduate",
	StepPromote:          "promote",
	StepEnroll:           "enroll",
	StepMarkEnrolled:     "mark_enrolled",
	StepResetAssignments: "reset_assignments",
	StepAdvanceYear:      "advance_year",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// Steps returns every executor step in execution order.
func Steps() []Step {
	steps := make([]Step, 0, StepCount)
	for s := StepGraduate; s <= StepAdvanceYear; s++ {
		steps = append(steps, s)
	}
	return steps
}
