// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package menu

import (
	"errors"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// SurveyPrompter draws arrow-key lists and inline validation on a terminal.
type SurveyPrompter struct {
	opts []survey.AskOpt
}

func NewSurveyPrompter(in terminal.FileReader, out terminal.FileWriter, errOut io.Writer) *SurveyPrompter {
	return &SurveyPrompter{
		opts: []survey.AskOpt{survey.WithStdio(in, out, errOut)},
	}
}

func (p *SurveyPrompter) Select(message string, options []string) (int, error) {
	var index int
	err := survey.AskOne(&survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 10,
	}, &index, p.opts...)
	if err != nil {
		return -1, surveyError(err)
	}
	return index, nil
}

func (p *SurveyPrompter) Input(message string, validate func(string) error) (string, error) {
	opts := p.opts
	if validate != nil {
		opts = append(opts[:len(opts):len(opts)], survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return validate(strings.TrimSpace(s))
		}))
	}

	var answer string
	if err := survey.AskOne(&survey.Input{Message: message}, &answer, opts...); err != nil {
		return "", surveyError(err)
	}
	return strings.TrimSpace(answer), nil
}

func surveyError(err error) error {
	if errors.Is(err, terminal.InterruptErr) || errors.Is(err, io.EOF) {
		return ErrInterrupted
	}
	return err
}
