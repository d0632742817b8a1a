package domain

// Bounding-box and year column names in the input file.
const (
	ColumnLeft   = "left"
	ColumnRight  = "right"
	ColumnTop    = "top"
	ColumnBottom = "bottom"
	ColumnYear   = "Year"
	ColumnAPI    = "API"
)

// RequiredColumns must be present in the input header.
var RequiredColumns = []string{ColumnLeft, ColumnRight, ColumnTop, ColumnBottom, ColumnYear, ColumnAPI}

// MetricColumns lists the metric columns in file order.
var MetricColumns = []string{
	"API", "Temp", "Humidity", "Precip", "Wind",
	"Vegetation", "Traffic", "Building", "Altitude", "Population",
}

// TooltipColumns are the metrics shown when hovering a cell on the map.
var TooltipColumns = []string{"API", "Temp", "Humidity", "Precip", "Wind"}

// Metrics holds the per-cell environmental readings. JSON keys match the CSV
// column names so map tooltips can reference them directly.
type Metrics struct {
	API        Value `json:"API"`
	Temp       Value `json:"Temp"`
	Humidity   Value `json:"Humidity"`
	Precip     Value `json:"Precip"`
	Wind       Value `json:"Wind"`
	Vegetation Value `json:"Vegetation"`
	Traffic    Value `json:"Traffic"`
	Building   Value `json:"Building"`
	Altitude   Value `json:"Altitude"`
	Population Value `json:"Population"`
}

// MissingMetrics returns Metrics with every reading missing.
func MissingMetrics() Metrics {
	m := Metrics{}
	for _, name := range MetricColumns {
		*m.Field(name) = Missing()
	}
	return m
}

// Field returns a pointer to the reading for a metric column, or nil if the
// name is not a metric column.
func (m *Metrics) Field(name string) *Value {
	switch name {
	case "API":
		return &m.API
	case "Temp":
		return &m.Temp
	case "Humidity":
		return &m.Humidity
	case "Precip":
		return &m.Precip
	case "Wind":
		return &m.Wind
	case "Vegetation":
		return &m.Vegetation
	case "Traffic":
		return &m.Traffic
	case "Building":
		return &m.Building
	case "Altitude":
		return &m.Altitude
	case "Population":
		return &m.Population
	}
	return nil
}

// Properties returns the metrics keyed by column name.
func (m Metrics) Properties() map[string]any {
	props := make(map[string]any, len(MetricColumns))
	for _, name := range MetricColumns {
		props[name] = *m.Field(name)
	}
	return props
}

// Row is one record of the input file.
type Row struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
	Year   int
	Metrics
}

// CenterLon is the longitude midpoint of the bounding box.
func (r Row) CenterLon() float64 {
	return (r.Left + r.Right) / 2
}

// CenterLat is the latitude midpoint of the bounding box.
func (r Row) CenterLat() float64 {
	return (r.Top + r.Bottom) / 2
}
