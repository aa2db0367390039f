package domain

// ChartKind identifies the rendering family a spec targets. The external
// renderer must support at least these five kinds.
type ChartKind string

const (
	ChartScatter   ChartKind = "scatter"
	ChartHistogram ChartKind = "histogram"
	ChartBar       ChartKind = "bar"
	ChartHeatmap   ChartKind = "heatmap"
	ChartBox       ChartKind = "box"
)

// Fixed pixel heights per chart family.
const (
	heightProfile   = 500
	heightHistogram = 400
	heightBar       = 400
	heightHeatmap   = 500
	heightBox       = 450
)

// Series is one plotted sequence. X holds numbers or timestamps (any
// JSON-serializable scalar); histogram series carry their sample values in
// X with Y empty, box series carry per-group samples in Y, heatmap series
// add a Z sequence.
type Series struct {
	X         []any     `json:"x,omitempty"`
	Y         []float64 `json:"y,omitempty"`
	Z         []float64 `json:"z,omitempty"`
	Label     string    `json:"label"`
	ColorHint string    `json:"color_hint,omitempty"`
}

// AxisLabels names the two primary axes.
type AxisLabels struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// ChartSpec is a renderer-agnostic chart description. Colors and styling
// beyond ColorHint are presentation detail owned by the renderer.
type ChartSpec struct {
	Kind       ChartKind  `json:"kind"`
	Series     []Series   `json:"series"`
	Title      string     `json:"title"`
	AxisLabels AxisLabels `json:"axis_labels"`
	Height     int        `json:"height"`

	// YReversed asks the renderer to invert the y axis. Set on depth
	// profiles so the surface draws at the top.
	YReversed bool `json:"y_reversed,omitempty"`
}

func hasChartKind(specs []ChartSpec, kind ChartKind) bool {
	for _, s := range specs {
		if s.Kind == kind {
			return true
		}
	}
	return false
}
