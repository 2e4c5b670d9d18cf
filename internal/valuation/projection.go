package valuation

// ProjectionYear is one annual period of a projection.
type ProjectionYear struct {
	Year                  int     `json:"year"`
	StartValue            float64 `json:"start_value"`
	EndValue              float64 `json:"end_value"`
	Depreciation          float64 `json:"depreciation"`
	Maintenance           float64 `json:"maintenance"`
	CumulativeMaintenance float64 `json:"cumulative_maintenance"`
}

type Projection struct {
	Years                 []ProjectionYear `json:"years"`
	CumulativeMaintenance float64          `json:"cumulative_maintenance"`
	FinalValue            float64          `json:"final_value"`
	TotalDepreciation     float64          `json:"total_depreciation"`
}

// ProjectFiveYear simulates five annual periods of compounding depreciation
// and flat maintenance. Each period is computed from the previous one so the
// rate can later vary per year.
func ProjectFiveYear(price, rate, maintenancePerYear float64) Projection {
	p := Projection{Years: make([]ProjectionYear, 0, projectionYears)}
	value := price
	for year := 1; year <= projectionYears; year++ {
		start := value
		value *= 1 - rate
		p.CumulativeMaintenance += maintenancePerYear
		p.Years = append(p.Years, ProjectionYear{
			Year:                  year,
			StartValue:            start,
			EndValue:              value,
			Depreciation:          start - value,
			Maintenance:           maintenancePerYear,
			CumulativeMaintenance: p.CumulativeMaintenance,
		})
	}
	p.FinalValue = value
	p.TotalDepreciation = price - value
	return p
}
