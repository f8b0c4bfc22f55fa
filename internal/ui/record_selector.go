package ui

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"

	"codereview/internal/audit"
)

// RecordInfo represents an audit record for picklist display
type RecordInfo struct {
	SHA1     string
	ShortSHA string
	Author   string
	Date     string
	Profile  string
}

// FormatRecord formats a commit record for display
func FormatRecord(rec *audit.CommitRecord) RecordInfo {
	short := rec.SHA1
	if len(short) > 8 {
		short = short[:8]
	}
	return RecordInfo{
		SHA1:     rec.SHA1,
		ShortSHA: short,
		Author:   rec.Author,
		Date:     rec.Date,
		Profile:  rec.Profile,
	}
}

// SelectRecord displays an interactive record picklist and returns the
// chosen record's full hash
func SelectRecord(records []RecordInfo) (string, error) {
	if len(records) == 0 {
		return "", fmt.Errorf("no records available")
	}

	options := make([]string, len(records))
	hashMap := make(map[string]string)

	for i, rec := range records {
		option := fmt.Sprintf("%s - %s (%s) [%s]",
			rec.ShortSHA,
			rec.Author,
			rec.Date,
			rec.Profile,
		)
		options[i] = option
		hashMap[option] = rec.SHA1
	}

	var selected string
	prompt := &survey.Select{
		Message:  "Select commit to review:",
		Options:  options,
		PageSize: 10,
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}

	return hashMap[selected], nil
}

// AskReason prompts for a reason code from a fixed set
func AskReason(message string, options []string) (string, error) {
	var reason string
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}
	if err := survey.AskOne(prompt, &reason); err != nil {
		return "", err
	}
	return reason, nil
}

// AskDetails prompts for free-text commentary
func AskDetails(message string) (string, error) {
	var details string
	prompt := &survey.Multiline{
		Message: message,
	}
	if err := survey.AskOne(prompt, &details); err != nil {
		return "", err
	}
	return details, nil
}

// AskSecret prompts for a value without echoing it
func AskSecret(message string) (string, error) {
	var value string
	prompt := &survey.Password{
		Message: message,
	}
	if err := survey.AskOne(prompt, &value); err != nil {
		return "", err
	}
	return value, nil
}

// Confirm asks a yes/no question
func Confirm(message string, defaultValue bool) (bool, error) {
	answer := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, err
	}
	return answer, nil
}
