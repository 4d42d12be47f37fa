package weather

// Condition is a coarse bucket over Open-Meteo weather codes.
type Condition string

const (
	ConditionClear        Condition = "clear"
	ConditionPartlyCloudy Condition = "partly_cloudy"
	ConditionFog          Condition = "fog"
	ConditionDrizzle      Condition = "drizzle"
	ConditionRain         Condition = "rain"
	ConditionSnow         Condition = "snow"
	ConditionThunderstorm Condition = "thunderstorm"
	ConditionUnknown      Condition = "unknown"
)

// Describe maps an Open-Meteo weather code onto a condition bucket.
func Describe(code int) Condition {
	switch {
	case code == 0:
		return ConditionClear
	case code >= 1 && code <= 3:
		return ConditionPartlyCloudy
	case code == 45 || code == 48:
		return ConditionFog
	case code >= 51 && code <= 55:
		return ConditionDrizzle
	case code >= 61 && code <= 65:
		return ConditionRain
	case code >= 71 && code <= 75:
		return ConditionSnow
	case code == 95:
		return ConditionThunderstorm
	default:
		return ConditionUnknown
	}
}
