package estimation

// Model ids selectable via the calibration file.
const (
	ModelLinearV1         = "linear_v1"
	ModelLinearV2         = "linear_v2"
	ModelObstructionCount = "obstruction_count_v1"
)

// linear_v1: wait = intercept + slope * occupancy_percent.
var linearV1 = Model{
	ID: ModelLinearV1,
	Schema: []ParamSpec{
		{Name: "slope", Required: false, Default: 0.2},
		{Name: "intercept", Required: false, Default: 0.0},
	},
	Eval: func(in Input, p Params) float64 {
		return p.Get("intercept") + p.Get("slope")*in.OccupancyPercent
	},
}

// linear_v2: interpolate between the empty-queue and full-queue wait times.
var linearV2 = Model{
	ID: ModelLinearV2,
	Schema: []ParamSpec{
		{Name: "wait_time_at_empty", Required: false, Default: 0.0},
		{Name: "wait_time_at_full", Required: false, Default: 20.0},
	},
	Eval: func(in Input, p Params) float64 {
		empty := p.Get("wait_time_at_empty")
		full := p.Get("wait_time_at_full")
		return empty + in.OccupancyPercent/100.0*(full-empty)
	},
}

// obstruction_count_v1: wait grows with the number of obstructed sensors.
var obstructionCountV1 = Model{
	ID: ModelObstructionCount,
	Schema: []ParamSpec{
		{Name: "base_minutes", Required: false, Default: 0.0},
		{Name: "per_obstruction_minutes", Required: false, Default: 2.0},
	},
	Eval: func(in Input, p Params) float64 {
		return p.Get("base_minutes") + p.Get("per_obstruction_minutes")*float64(in.ObstructedCount)
	},
}
