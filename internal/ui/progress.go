package ui

import (
	"time"

	"github.com/briandowns/spinner"
)

const (
	spinnerCharacterSetConstant = 14
	spinnerIntervalConstant     = 100 * time.Millisecond
	spinnerSuffixPrefixConstant = " "
	trackSuccessMarkConstant    = "✔"
	trackFailureMarkConstant    = "✖"
)

// Track shows a spinner next to message until the returned function is called
// with the outcome. Non-interactive reporters track nothing.
func (reporter *StatusReporter) Track(message string) func(error) {
	if reporter == nil || !reporter.interactive {
		return func(error) {}
	}

	indicator := spinner.New(spinner.CharSets[spinnerCharacterSetConstant], spinnerIntervalConstant, spinner.WithWriter(reporter.writer))
	indicator.Suffix = spinnerSuffixPrefixConstant + message
	indicator.Start()

	return func(failure error) {
		if failure == nil {
			indicator.FinalMSG = reporter.successColor.Sprint(trackSuccessMarkConstant) + indicator.Suffix + lineTerminatorConstant
		} else {
			indicator.FinalMSG = reporter.failureColor.Sprint(trackFailureMarkConstant) + indicator.Suffix + lineTerminatorConstant
		}
		indicator.Stop()
	}
}
