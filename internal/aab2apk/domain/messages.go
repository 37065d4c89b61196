package domain

// StepStartedMsg is sent when the converter enters a step
type StepStartedMsg struct {
	Step Step
}

// StepFinishedMsg is sent when a step completes; Err is nil on success
type StepFinishedMsg struct {
	Step Step
	Err  error
}

// ConversionFinishedMsg is sent once the whole conversion has returned
type ConversionFinishedMsg struct {
	Result *Result
	Err    error
}
