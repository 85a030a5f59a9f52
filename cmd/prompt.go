package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

var errExit = errors.New("exit requested")

func choose(label string, items []string) (string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
	}

	_, choice, err := prompt.Run()
	return choice, interrupted(err)
}

// chooseIndex is choose for lists whose labels may repeat.
func chooseIndex(label string, items []string) (int, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
	}

	index, _, err := prompt.Run()
	return index, interrupted(err)
}

func ask(label string, required bool) (string, error) {
	prompt := promptui.Prompt{Label: label}
	if required {
		prompt.Validate = func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("this field is required")
			}
			return nil
		}
	}

	answer, err := prompt.Run()
	return strings.TrimSpace(answer), interrupted(err)
}

func askSecret(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Mask:  '*',
	}

	answer, err := prompt.Run()
	return answer, interrupted(err)
}

// confirm asks a yes/no question. Anything but an explicit yes declines.
func confirm(question string) bool {
	prompt := promptui.Prompt{
		Label:     question,
		IsConfirm: true,
	}

	_, err := prompt.Run()
	return err == nil
}

// notice shows msg and waits for the user to acknowledge it.
func notice(msg string) {
	fmt.Println(msg)
	prompt := promptui.Prompt{Label: "Press enter to continue"}
	_, _ = prompt.Run()
}

// interrupted turns Ctrl-C and Ctrl-D into errExit.
func interrupted(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return errExit
	}
	return err
}
