package hermes

const (
	SubjectFuelPriceUpdated = "shortlist.fuel.price.updated"
	SubjectInventoryChanged = "shortlist.inventory.*.changed"

	StreamName   = "SHORTLIST_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

// StreamSubjects are the subjects this service publishes and retains.
var StreamSubjects = []string{"shortlist.recommendation.>", "shortlist.fuel.>"}

func SubjectRecommendationGenerated(fingerprint string) string {
	return "shortlist.recommendation." + fingerprint + ".generated"
}

func SubjectVehicleChanged(vehicleID string) string { return "shortlist.inventory." + vehicleID + ".changed" }
