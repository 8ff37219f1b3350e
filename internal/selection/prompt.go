package selection

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted signals the operator cancelled the prompt (Ctrl+C).
var ErrAborted = errors.New("selection: aborted")

// SelectConfig configures a single-choice prompt.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
}

// InputConfig configures a text prompt.
type InputConfig struct {
	Message string
	Help    string
}

// Driver abstracts the terminal so the prompt flow can be tested without one.
type Driver interface {
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	Input(ctx context.Context, cfg InputConfig) (string, error)
}

// Prompter asks the operator which candidates to process.
type Prompter struct {
	driver Driver

	// OnFallback, when set, receives the prompt error that made Ask select
	// every candidate.
	OnFallback func(err error)
}

// NewPrompter returns a Prompter reading from the terminal.
func NewPrompter() *Prompter {
	return &Prompter{driver: surveyDriver{}}
}

// NewPrompterWithDriver returns a Prompter using driver.
func NewPrompterWithDriver(driver Driver) *Prompter {
	return &Prompter{driver: driver}
}

// Ask runs the prompt once. It returns ErrAborted when the operator cancels.
// Any other prompt failure, such as stdin not being a terminal, selects every
// candidate.
func (p *Prompter) Ask(ctx context.Context, candidates int) (Selection, error) {
	mode, err := p.driver.Select(ctx, SelectConfig{
		Message: "请选择处理模式:",
		Options: []string{
			fmt.Sprintf("处理所有候选人 (%d 位)", candidates),
			"选择特定候选人",
		},
	})
	if err != nil {
		return p.fallback(err)
	}
	if mode != 1 {
		return All(), nil
	}

	input, err := p.driver.Input(ctx, InputConfig{
		Message: "候选人姓名:",
		Help:    "用逗号分隔，例如: 张三,李四；直接回车处理所有候选人",
	})
	if err != nil {
		return p.fallback(err)
	}
	return Parse(input), nil
}

func (p *Prompter) fallback(err error) (Selection, error) {
	if errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled) {
		return Selection{}, ErrAborted
	}
	if p.OnFallback != nil {
		p.OnFallback(err)
	}
	return All(), nil
}

type surveyDriver struct{}

func (surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var out int
	prompt := &survey.Select{
		Message: cfg.Message,
		Options: cfg.Options,
	}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.Options[cfg.DefaultIndex]
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return 0, translateSurveyErr(err)
	}
	return out, nil
}

func (surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: cfg.Message,
		Help:    cfg.Help,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
