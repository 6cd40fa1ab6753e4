package scoring

// Fixed coaching messages
const (
	MsgExcellent = "Excellent performance - maintain current standards"
	MsgUrgent    = "URGENT: Schedule immediate safety review - multiple incidents recorded"

	MsgAcceleration  = "Practice gradual acceleration to improve fuel efficiency and reduce wear"
	MsgBrakingDist   = "Maintain a safe following distance to reduce harsh braking"
	MsgBrakingAntic  = "Anticipate traffic flow changes earlier to brake smoothly"
	MsgSpeed         = "Review speed limit compliance - consider speed governor settings"
	MsgIdle          = "Reduce unnecessary idling - turn off the engine during extended stops"
	MsgSafety        = "Complete a defensive driving refresher course"
	MsgFuelEfficient = "Schedule fuel-efficient driving coaching"

	MsgGood     = "Good performance - continue current practices"
	MsgAdvanced = "Consider advanced training opportunities to further improve"
)

// Rule thresholds
const (
	excellentScore        = 90
	urgentIncidents       = 3
	accelerationThreshold = 80
	brakingThreshold      = 80
	speedThreshold        = 85
	idleThreshold         = 75
	safetyThreshold       = 70
	fuelThreshold         = 75
)

type rule struct {
	match    func(s Scores) bool
	messages []string
}

var coachingRules = []rule{
	{func(s Scores) bool { return s.Acceleration < accelerationThreshold }, []string{MsgAcceleration}},
	{func(s Scores) bool { return s.Braking < brakingThreshold }, []string{MsgBrakingDist, MsgBrakingAntic}},
	{func(s Scores) bool { return s.SpeedCompliance < speedThreshold }, []string{MsgSpeed}},
	{func(s Scores) bool { return s.IdleTime < idleThreshold }, []string{MsgIdle}},
	{func(s Scores) bool { return s.Safety < safetyThreshold }, []string{MsgSafety}},
	{func(s Scores) bool { return s.FuelEfficiency < fuelThreshold }, []string{MsgFuelEfficient}},
}

// DefaultRecommendations is returned when no rule matches or no data exists
func DefaultRecommendations() []string {
	return []string{MsgGood, MsgAdvanced}
}

// Recommend evaluates the rule table top to bottom. The result is never empty.
//
// With no behavior samples the default pair is returned. An overall score of 90 or
// more short-circuits to the single excellent message. More than 3 incidents puts the
// URGENT message first.
func Recommend(s Scores, incidents, samples int) []string {
	if samples <= 0 {
		return DefaultRecommendations()
	}
	if s.Overall >= excellentScore {
		return []string{MsgExcellent}
	}

	var out []string
	if incidents > urgentIncidents {
		out = append(out, MsgUrgent)
	}
	for _, r := range coachingRules {
		if r.match(s) {
			out = append(out, r.messages...)
		}
	}

	if len(out) == 0 {
		return DefaultRecommendations()
	}
	return out
}
