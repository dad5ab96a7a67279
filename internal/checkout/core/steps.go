package core

type Step struct {
	Name    string
	Execute func(fc *FlowContext) error
}

func NewStep(name string, execute func(fc *FlowContext) error) *Step {
	return &Step{
		Name:    name,
		Execute: execute,
	}
}

// NamedFlow is a fixed list of steps.
type NamedFlow struct {
	name  string
	steps []*Step
}

func NewFlow(name string, steps ...*Step) *NamedFlow {
	return &NamedFlow{name: name, steps: steps}
}

func (f *NamedFlow) Name() string   { return f.name }
func (f *NamedFlow) Steps() []*Step { return f.steps }
