package store

import "github.com/sleepypillowz/thesis/internal/models"

// advanceMap enumerates the legal forward moves. Terminal states are
// reached only through Complete and Cancel, never through Advance.
var advanceMap = map[string][]string{
	models.StatusWaiting: {
		models.StatusQueuedForAssessment,
		models.StatusQueuedForTreatment,
		models.StatusOngoingForLaboratory,
	},
	models.StatusQueuedForAssessment:  {models.StatusOngoingForTreatment},
	models.StatusQueuedForTreatment:   {models.StatusOngoingForTreatment},
	models.StatusOngoingForLaboratory: {models.StatusOngoingForTreatment},
}

func CanAdvance(from, to string) bool {
	for _, status := range advanceMap[from] {
		if status == to {
			return true
		}
	}
	return false
}

// CanComplete allows completion once a clinician has the patient, from
// either ongoing stage.
func CanComplete(from string) bool {
	return from == models.StatusOngoingForTreatment || from == models.StatusOngoingForLaboratory
}

// CanCancel allows an explicit cancel from any non-terminal state.
func CanCancel(from string) bool {
	return !models.IsTerminal(from) && knownStatus(from)
}

func knownStatus(status string) bool {
	switch status {
	case models.StatusWaiting,
		models.StatusQueuedForAssessment,
		models.StatusQueuedForTreatment,
		models.StatusOngoingForLaboratory,
		models.StatusOngoingForTreatment,
		models.StatusCompleted,
		models.StatusCancelled:
		return true
	}
	return false
}
