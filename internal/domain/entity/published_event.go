package entity

import "time"

// ComponentKey is one of the four visual component kinds a PublishedEvent
// may carry, in the order chosen by the Component Selector.
type ComponentKey string

const (
	ComponentTimeline ComponentKey = "timeline"
	ComponentDetails  ComponentKey = "details"
	ComponentGraph    ComponentKey = "graph"
	ComponentMap      ComponentKey = "map"
)

// TimelineEntry is one {date, event} pair in a Timeline component.
type TimelineEntry struct {
	Date  string
	Event string
}

// DetailEntry is one {label, value, subtitle?} triple in a Details
// component.
type DetailEntry struct {
	Label    string
	Value    string
	Subtitle string
}

// ChartType is the closed set of chart kinds a Graph component may use.
type ChartType string

const (
	ChartLine   ChartType = "line"
	ChartBar    ChartType = "bar"
	ChartArea   ChartType = "area"
	ChartColumn ChartType = "column"
)

// DataPoint is one {label, value} pair in a Graph component.
type DataPoint struct {
	Label string
	Value float64
}

// Graph is the structured form of a data/trend component.
type Graph struct {
	ChartType  ChartType
	DataPoints []DataPoint
}

// MapMarker is one labelled coordinate in a Map component.
type MapMarker struct {
	Lat  float64
	Lon  float64
	Name string
}

// Map is the structured form of a geographic component.
type Map struct {
	Center  MapMarker
	Markers []MapMarker
}

// PublishedEvent is the pipeline's output: one dual-language article per
// EventCluster, with its selected and generated visual components.
type PublishedEvent struct {
	EventID   string
	ClusterID string

	TitleAdvanced   string
	TitleSimple     string
	BulletsAdvanced []string
	BulletsSimple   []string
	BodyAdvanced    string
	BodySimple      string

	Category Category
	Emoji    string

	ImageURL        string
	ImageSourceName string

	NumberOfSources int
	ComponentsOrder []ComponentKey

	Timeline []TimelineEntry
	Details  []DetailEntry
	Graph    *Graph
	Map      *Map

	Version       int
	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

// PresentComponents returns the set of component keys with a non-null
// field, used to validate the invariant that ComponentsOrder length equals
// the count of non-null component fields.
func (p *PublishedEvent) PresentComponents() map[ComponentKey]bool {
	present := make(map[ComponentKey]bool, 4)
	if len(p.Timeline) > 0 {
		present[ComponentTimeline] = true
	}
	if len(p.Details) > 0 {
		present[ComponentDetails] = true
	}
	if p.Graph != nil {
		present[ComponentGraph] = true
	}
	if p.Map != nil {
		present[ComponentMap] = true
	}
	return present
}

// ValidateComponents checks the PublishedEvent invariant that
// ComponentsOrder length equals the number of non-null component fields
// and that every listed key corresponds to a present field.
func (p *PublishedEvent) ValidateComponents() error {
	present := p.PresentComponents()
	if len(p.ComponentsOrder) != len(present) {
		return &ValidationError{
			Field:   "components_order",
			Message: "length must equal the number of populated component fields",
		}
	}
	seen := make(map[ComponentKey]bool, len(p.ComponentsOrder))
	for _, key := range p.ComponentsOrder {
		if !present[key] {
			return &ValidationError{Field: "components_order", Message: "listed component has no data: " + string(key)}
		}
		if seen[key] {
			return &ValidationError{Field: "components_order", Message: "duplicate component: " + string(key)}
		}
		seen[key] = true
	}
	return nil
}
