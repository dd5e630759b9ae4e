package locale

import "github.com/helpcar/quotechat/pkg/domain"

// Fixed translation keys. Every catalog must provide all of them; see Catalog.Entries.
const (
	KeyHeaderTitle  = "header.title"
	KeyHeaderStatus = "header.status"

	KeyProblemGreeting        = "steps.problem.greeting"
	KeyProblemQuestion        = "steps.problem.question"
	KeyVehicleQuestion        = "steps.vehicle.question"
	KeyWheelQuestion          = "steps.wheel.question"
	KeyTransmissionQuestion   = "steps.transmission.question"
	KeyDriveQuestion          = "steps.drive.question"
	KeyWreckBrandQuestion     = "steps.wreck_brand.question"
	KeyWreckBrandPlaceholder  = "steps.wreck_brand.placeholder"
	KeyWreckModelQuestion     = "steps.wreck_model.question"
	KeyWreckModelPlaceholder  = "steps.wreck_model.placeholder"
	KeyWreckYearQuestion      = "steps.wreck_year.question"
	KeyWreckYearPlaceholder   = "steps.wreck_year.placeholder"
	KeyLocationQuestion       = "steps.location.question"
	KeyLocationGPSButton      = "steps.location.gps_button"
	KeyLocationAddressButton  = "steps.location.address_button"
	KeyLocationSeparator      = "steps.location.separator"
	KeyLocationPlaceholder    = "steps.location.address_placeholder"
	KeyLocationBackButton     = "steps.location.back_button"
	KeyLocationPrivacy        = "steps.location.privacy"
	KeyLocationSearching      = "steps.location.searching"
	KeyDestinationQuestion    = "steps.destination.question"
	KeyDestinationPlaceholder = "steps.destination.placeholder"
	KeyDestinationUnknownBtn  = "steps.destination.unknown_button"
	KeyDestinationHint        = "steps.destination.hint"
	KeyFinalMessage           = "steps.final.message"

	KeyDriveYes      = "drive.yes"
	KeyDriveNo       = "drive.no"
	KeyDriveLabelYes = "drive.label_yes"
	KeyDriveLabelNo  = "drive.label_no"

	KeyLocationGPS     = "location.gps"
	KeyLocationAddress = "location.address"

	KeyDestinationUnknown = "destination.unknown"
	KeyDistanceLabel      = "destination.distance_label"
	KeyDurationLabel      = "destination.duration_label"

	KeySummaryTitle        = "summary.title"
	KeySummaryCompany      = "summary.company"
	KeySummaryProblem      = "summary.problem"
	KeySummaryVehicle      = "summary.vehicle"
	KeySummaryTransmission = "summary.transmission"
	KeySummaryLocation     = "summary.location"
	KeySummaryDestination  = "summary.destination"
	KeySummaryCTA          = "summary.cta"
	KeySummaryTrustTitle   = "summary.trust_title"
	KeySummaryTrustMessage = "summary.trust_message"

	KeyMsgGreeting     = "message.greeting"
	KeyMsgIntro        = "message.intro"
	KeyMsgProblem      = "message.problem"
	KeyMsgVehicle      = "message.vehicle"
	KeyMsgTransmission = "message.transmission"
	KeyMsgLocation     = "message.location"
	KeyMsgDestination  = "message.destination"
	KeyMsgDistance     = "message.distance"
	KeyMsgClosing      = "message.closing"

	KeyFooterPrivacy = "footer.privacy"
)

func ProblemLabelKey(p domain.Problem) string    { return "problems." + string(p) + ".label" }
func ProblemResponseKey(p domain.Problem) string { return "problems." + string(p) + ".response" }

func VehicleLabelKey(v domain.VehicleCategory) string { return "vehicles." + string(v) + ".label" }
func VehicleExamplesKey(v domain.VehicleCategory) string {
	return "vehicles." + string(v) + ".examples"
}

func WheelPositionKey(w domain.WheelPosition) string { return "wheel_positions." + string(w) }
func TransmissionKey(t domain.Transmission) string   { return "transmissions." + string(t) }

// LocationErrorKey returns the notice shown when locating the visitor failed.
func LocationErrorKey(k domain.LocationErrorKind) string { return "location.errors." + string(k) }

// DriveAnswerKey returns the yes/no label echoed as the visitor's answer.
func DriveAnswerKey(enabled bool) string {
	if enabled {
		return KeyDriveYes
	}
	return KeyDriveNo
}

// DriveLabelKey returns the short drive label (4x4 / 2WD) used in summaries.
func DriveLabelKey(enabled bool) string {
	if enabled {
		return KeyDriveLabelYes
	}
	return KeyDriveLabelNo
}
