// Package analysis turns the analyze form into a backend request.
package analysis

import (
	"fmt"
	"strings"
)

// Tab is the input mode of the analyze form.
type Tab string

const (
	TabManual Tab = "manual"
	TabResume Tab = "resume"
)

// ParseTab accepts "manual" or "resume" in any case. Empty means manual.
func ParseTab(s string) (Tab, error) {
	switch Tab(strings.ToLower(strings.TrimSpace(s))) {
	case "", TabManual:
		return TabManual, nil
	case TabResume:
		return TabResume, nil
	default:
		return "", fmt.Errorf("unknown input mode %q: expected %q or %q", s, TabManual, TabResume)
	}
}

// Draft is the in-progress analyze form. It is never persisted.
type Draft struct {
	JobTitle       string `label:"Target Job Role" validate:"required"`
	JobDescription string `label:"Job Description" validate:"required_if=ActiveTab manual"`
	YourSkills     string `label:"Your Skills" validate:"required_if=ActiveTab manual"`
	Experience     string `label:"Years of Experience" validate:"required,oneof=0-1 1-3 3-5 5+"`
	ResumeText     string `label:"Resume" validate:"required_if=ActiveTab resume"`
	ActiveTab      Tab    `label:"Input Mode" validate:"oneof=manual resume"`
}

// Roles are the target roles offered by the form.
var Roles = []string{
	"Full Stack Developer",
	"Data Scientist",
	"DevOps Engineer",
	"Cybersecurity Analyst",
	"Python Developer",
	"UI/UX Designer",
}

// ExperienceLevel is one option of the experience selector.
type ExperienceLevel struct {
	Value string
	Label string
}

var ExperienceLevels = []ExperienceLevel{
	{Value: "0-1", Label: "0-1 years (Entry Level)"},
	{Value: "1-3", Label: "1-3 years (Junior)"},
	{Value: "3-5", Label: "3-5 years (Mid-Level)"},
	{Value: "5+", Label: "5+ years (Senior)"},
}
